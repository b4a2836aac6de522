package ports

// Prompter спрашивает у оператора данные для входа
type Prompter interface {
	Prompt(message string) (string, error)
	// Password по возможности не показывает ввод
	Password(message string) (string, error)
}
