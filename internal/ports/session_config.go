package ports

type ProxyConfig struct {
	Enabled  bool
	Server   string
	Port     int32
	Username string
	Password string
}

// DeviceConfig параметры устройства, которыми представляется клиент
type DeviceConfig struct {
	DeviceModel        string
	SystemVersion      string
	ApplicationVersion string
	LangCode           string
}
