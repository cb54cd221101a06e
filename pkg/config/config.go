package config

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// Config agrupa la configuración de la aplicación (lectura vía Viper desde env y opcionalmente archivo).
type Config struct {
	App        AppConfig
	HTTP       HTTPConfig
	Sheets     SheetsConfig
	Telegram   TelegramConfig
	TiendaNube TiendaNubeConfig
	Scheduler  SchedulerConfig
}

// AppConfig configuración general de la aplicación.
type AppConfig struct {
	Env  string // development, staging, production
	Name string
}

// HTTPConfig configuración del servidor HTTP (webhooks + reportes).
type HTTPConfig struct {
	Host string
	Port int
}

// Addr devuelve la dirección de escucha (host:port).
func (c HTTPConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// SheetsConfig configuración de la planilla de Google que actúa como libro contable.
type SheetsConfig struct {
	SpreadsheetID   string
	CredentialsFile string // ruta al JSON de la service account
}

// TelegramConfig configuración del canal de notificaciones.
type TelegramConfig struct {
	BotToken       string
	ChatID         string  // destino de alertas y reportes automáticos
	AllowedUserIDs []int64 // reservado para el front-end conversacional; hoy nadie lo consume
}

// TiendaNubeConfig credenciales de la API de TiendaNube.
type TiendaNubeConfig struct {
	BaseURL     string
	StoreID     string // id numérico de la tienda, como viene en el env
	AccessToken string
	UserAgent   string
}

// SchedulerConfig configuración del barrido diario de conciliación.
type SchedulerConfig struct {
	Enabled       bool
	Hour          int    // hora local del barrido diario
	Minute        int
	LookAheadDays int    // ventana de alertas de vencimientos
	Timezone      string // ej. America/Argentina/Buenos_Aires
}

// Load lee la configuración desde variables de entorno (y opcionalmente desde archivo .env).
// Las env vars tienen prioridad. Nombres esperados: APP_ENV, SHEET_ID, BOT_TOKEN, etc.
func Load() (*Config, error) {
	v := viper.New()

	// Opcional: archivo .env en el directorio de trabajo
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	_ = v.ReadInConfig() // ignoramos error si no existe

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg := &Config{
		App: AppConfig{
			Env:  getString(v, "APP_ENV", "development"),
			Name: getString(v, "APP_NAME", "pombot-pg"),
		},
		HTTP: HTTPConfig{
			Host: getString(v, "HTTP_HOST", "0.0.0.0"),
			Port: getInt(v, "HTTP_PORT", 8080),
		},
		Sheets: SheetsConfig{
			SpreadsheetID:   getString(v, "SHEET_ID", ""),
			CredentialsFile: getString(v, "GOOGLE_CREDENTIALS_FILE", "bot-credentials.json"),
		},
		Telegram: TelegramConfig{
			BotToken:       getString(v, "BOT_TOKEN", ""),
			ChatID:         getString(v, "CHAT_ID", ""),
			AllowedUserIDs: parseUserIDs(getString(v, "ALLOWED_USER_IDS", "")),
		},
		TiendaNube: TiendaNubeConfig{
			BaseURL:     getString(v, "TIENDANUBE_API_BASE_URL", "https://api.tiendanube.com/v1"),
			StoreID:     getString(v, "TIENDANUBE_STORE_ID", ""),
			AccessToken: getString(v, "TIENDANUBE_ACCESS_TOKEN", ""),
			UserAgent:   getString(v, "TIENDANUBE_USER_AGENT", "Pombot/1.0"),
		},
		Scheduler: SchedulerConfig{
			Enabled:       getBool(v, "SCHEDULER_ENABLED", true),
			Hour:          getInt(v, "SCHEDULER_HOUR", 9),
			Minute:        getInt(v, "SCHEDULER_MINUTE", 0),
			LookAheadDays: getInt(v, "SCHEDULER_LOOKAHEAD_DAYS", 3),
			Timezone:      getString(v, "SCHEDULER_TIMEZONE", "America/Argentina/Buenos_Aires"),
		},
	}

	return cfg, nil
}

// parseUserIDs acepta "123,456" o "[123, 456]" (formato heredado del secreto original).
func parseUserIDs(raw string) []int64 {
	cleaned := strings.Trim(strings.TrimSpace(raw), "[]")
	if cleaned == "" {
		return nil
	}
	var ids []int64
	for _, part := range strings.Split(cleaned, ",") {
		id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			continue
		}
		ids = append(ids, id)
	}
	return ids
}

func getString(v *viper.Viper, key, def string) string {
	if v.IsSet(key) {
		return v.GetString(key)
	}
	return def
}

func getInt(v *viper.Viper, key string, def int) int {
	if v.IsSet(key) {
		switch v.Get(key).(type) {
		case string:
			n, err := strconv.Atoi(v.GetString(key))
			if err != nil {
				return def
			}
			return n
		default:
			return v.GetInt(key)
		}
	}
	return def
}

func getBool(v *viper.Viper, key string, def bool) bool {
	if v.IsSet(key) {
		return v.GetBool(key)
	}
	return def
}
