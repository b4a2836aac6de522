package domain

import "time"

// Credentials данные приложения и номер телефона. Ядро их не сохраняет.
type Credentials struct {
	AppID   int32
	AppHash string
	Phone   string
}

// Session is the persisted descriptor of an authorized TDLib session.
// The keys themselves live in DatabaseDir and are owned by TDLib.
type Session struct {
	DatabaseDir string    `yaml:"database_dir"`
	FilesDir    string    `yaml:"files_dir"`
	UserID      int64     `yaml:"user_id,omitempty"`
	Phone       string    `yaml:"phone,omitempty"`
	Authorized  bool      `yaml:"authorized"`
	SavedAt     time.Time `yaml:"saved_at,omitempty"`
}
