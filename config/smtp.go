package config

import "os"

type SMTPConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	From     string
}

func GetSMTPConfig() SMTPConfig {
	user := os.Getenv("SMTP_USER")
	return SMTPConfig{
		Host:     os.Getenv("SMTP_HOST"),
		Port:     getInt("SMTP_PORT", 587),
		User:     user,
		Password: os.Getenv("SMTP_PASS"),
		From:     getEnv("SMTP_FROM", user),
	}
}

func (c SMTPConfig) Enabled() bool {
	return c.Host != ""
}
