package config

import (
	"log"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/joho/godotenv"
)

var (
	MAIN_ROUTES   string
	APP_PORT      string
	JWTSecret     string
	JWTExpiration int

	// Senha única de acesso (texto puro ou hash bcrypt "$2...")
	Senha string

	LogLevel    string
	LogEncoding string

	// Caminhos dos arquivos de trabalho
	CaminhoPlanilha  string // planilha de localizações (aba Paco)
	DiretorioPedidos string // pasta com pedidos.xlsx e backup/
	ArquivoPedidos   string
	DiretorioBackup  string
	ArquivoLeituras  string // banco sqlite da fila de leituras

	// Notificação de pedidos urgentes
	SMTPHost       string
	SMTPPort       int
	SMTPUser       string
	SMTPPassword   string
	EmailsUrgencia []string

	allowedOrigins map[string]bool
)

// LoadConfig lê o .env e inicializa as variáveis de configuração
func LoadConfig() {
	if err := godotenv.Load(); err != nil {
		log.Println("Warning: .env file not found, using system environment variables")
	}

	MAIN_ROUTES = getEnv("MAIN_ROUTES", "/api/v1")
	APP_PORT = getEnv("APP_PORT", "9000")

	JWTSecret = getEnv("JWT_SECRET", "pedidos_scs_key_secret")
	JWTExpiration = getEnvAsInt("JWT_EXPIRATION", 86400)

	Senha = getEnv("SENHA_ACESSO", "pyh#1874")

	LogLevel = getEnv("LOG_LEVEL", "info")
	LogEncoding = getEnv("LOG_ENCODING", "console")

	CaminhoPlanilha = getEnv("CAMINHO_PLANILHA", "dados/planilha.xlsx")
	DiretorioPedidos = getEnv("DIRETORIO_PEDIDOS", "pedidos")
	ArquivoPedidos = filepath.Join(DiretorioPedidos, "pedidos.xlsx")
	DiretorioBackup = filepath.Join(DiretorioPedidos, "backup")
	ArquivoLeituras = getEnv("ARQUIVO_LEITURAS", filepath.Join(DiretorioPedidos, "leituras.db"))

	SMTPHost = getEnv("SMTP_HOST", "")
	SMTPPort = getEnvAsInt("SMTP_PORT", 587)
	SMTPUser = getEnv("SMTP_USER", "")
	SMTPPassword = getEnv("SMTP_PASSWORD", "")
	EmailsUrgencia = splitCSV(getEnv("EMAILS_URGENCIA", ""))

	loadAllowedOrigins()
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := getEnv(key, "")
	if value, err := strconv.Atoi(valueStr); err == nil {
		return value
	}
	return defaultValue
}

func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func loadAllowedOrigins() {
	allowedOrigins = make(map[string]bool)
	originsStr := getEnv("ALLOWED_ORIGINS", "")

	if originsStr == "" {
		allowedOrigins = map[string]bool{
			"http://127.0.0.1:3000": true,
		}
		return
	}

	origins := strings.Split(originsStr, ",")
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowedOrigins[origin] = true
		}
	}
}

func SetupCORS(app *fiber.App) {
	app.Use(func(c *fiber.Ctx) error {
		origin := c.Get("Origin")
		if allowedOrigins[origin] {
			c.Set("Access-Control-Allow-Origin", origin)
			c.Set("Access-Control-Allow-Methods", "GET,POST,PUT,DELETE,OPTIONS")
			c.Set("Access-Control-Allow-Headers", "Origin, Content-Type, Accept, Authorization")
			c.Set("Access-Control-Allow-Credentials", "true")
		}

		// Handle preflight request
		if c.Method() == fiber.MethodOptions {
			return c.SendStatus(fiber.StatusNoContent)
		}
		return c.Next()
	})
}
