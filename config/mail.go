package config

// MailConfig describes where stock-out notifications go and how they leave the process.
// Either BridgeURL (HTTP bridge) or SMTP credentials may be set; neither means mail is disabled.
type MailConfig struct {
	SMTPHost  string
	SMTPPort  int
	SMTPUser  string
	SMTPPass  string
	From      string
	Recipient string
	BridgeURL string

	// BridgeAuth is sent verbatim as the Authorization header to the bridge.
	BridgeAuth string
}

func LoadMailConfig() MailConfig {
	user := GetEnv("SMTP_USER", "")
	return MailConfig{
		SMTPHost:   GetEnv("SMTP_HOST", "smtp.gmail.com"),
		SMTPPort:   GetEnvInt("SMTP_PORT", 587),
		SMTPUser:   user,
		SMTPPass:   GetEnv("SMTP_PASS", ""),
		From:       GetEnv("EMAIL_FROM", user),
		Recipient:  GetEnv("EMAIL_RECIPIENT", ""),
		BridgeURL:  GetEnv("EMAIL_BRIDGE_URL", ""),
		BridgeAuth: GetEnv("EMAIL_BRIDGE_AUTH", ""),
	}
}

// SMTPConfigured reports whether SMTP credentials are present.
func (m MailConfig) SMTPConfigured() bool {
	return m.SMTPUser != "" && m.SMTPPass != ""
}
