package controllers

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pedidos-app/config"
	"pedidos-app/utils"
)

// AuthController emite o token de supervisor a partir da senha de liberação.
// Não há cadastro de usuários na bancada; uma única senha protege as
// operações administrativas.
type AuthController struct{}

func NewAuthController() *AuthController {
	return &AuthController{}
}

func (c *AuthController) Login(ctx *fiber.Ctx) error {
	var loginInput struct {
		Senha string `json:"senha"`
	}
	if err := ctx.BodyParser(&loginInput); err != nil {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Invalid request"})
	}

	if loginInput.Senha == "" {
		return ctx.Status(fiber.StatusBadRequest).JSON(fiber.Map{"message": "Missing required fields"})
	}

	if !VerificarSenha(loginInput.Senha) {
		utils.Log.Warnw("Tentativa de login com senha incorreta", "ip", ctx.IP())
		return ctx.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid credentials"})
	}

	sessionID := uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"session_id": sessionID,
		"exp":        time.Now().Add(time.Duration(config.JWTExpiration) * time.Second).Unix(),
		"jti":        uuid.NewString(),
	})

	tokenString, err := token.SignedString([]byte(config.JWTSecret))
	if err != nil {
		return ctx.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"message": "Failed to generate token"})
	}

	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "Login successful",
		"x_token": tokenString,
	})
}

func (c *AuthController) IsLoggedIn(ctx *fiber.Ctx) error {
	return ctx.Status(fiber.StatusOK).JSON(fiber.Map{
		"success": true,
		"message": "User is logged in",
	})
}

// VerificarSenha aceita a senha em texto puro ou como hash bcrypt, conforme
// o que estiver configurado no ambiente.
func VerificarSenha(senha string) bool {
	configurada := config.Senha
	if strings.HasPrefix(configurada, "$2a$") || strings.HasPrefix(configurada, "$2b$") {
		return bcrypt.CompareHashAndPassword([]byte(configurada), []byte(senha)) == nil
	}
	return senha == configurada
}
