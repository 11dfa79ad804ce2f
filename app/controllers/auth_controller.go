package controllers

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/log"
	"gorm.io/gorm"

	"github.com/Arad-Services/as-laburda-pwa-app-sub000/app/models"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/database"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/env"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/hcaptcha"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/mail"
	"github.com/Arad-Services/as-laburda-pwa-app-sub000/internal/pkg/session"
)

const (
	AUTH_KEY      string = "authenticated"
	USER_ID       string = "user_id"
	USER_NAME     string = "username"
	USER_IS_ADMIN string = "isAdmin"
)

type registerRequest struct {
	Name         string `json:"name"`
	Email        string `json:"email"`
	Password     string `json:"password"`
	ReferralCode string `json:"referral_code"`
	CaptchaToken string `json:"captcha_token"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// HandleRegister creates an inactive account and sends the activation mail.
func HandleRegister(c *fiber.Ctx) error {
	var req registerRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	// Captcha is enforced only when a secret is configured
	if env.GetEnv("HCAPTCHA_SECRET", "") != "" {
		if ok, err := hcaptcha.Verify(req.CaptchaToken); !ok {
			log.Warnf("captcha verification failed: %v", err)
			return jsonError(c, fiber.StatusBadRequest, "captcha_failed", "captcha verification failed")
		}
	}

	user, err := models.CreateUser(req.Name, req.Email, req.Password)
	if err != nil {
		return jsonError(c, fiber.StatusUnprocessableEntity, "validation_failed", err.Error())
	}
	user.ReferredByCode = req.ReferralCode

	if err := user.GenerateActivationToken(); err != nil {
		log.Errorf("failed to generate activation token: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "registration failed")
	}

	ipv4, ipv6 := GetClientIP(c)
	user.IPv4 = ipv4
	user.IPv6 = ipv6

	db := database.GetDB()
	if err := db.Create(user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return jsonError(c, fiber.StatusConflict, "conflict", "email is already registered")
		}
		log.Errorf("failed to create user: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "registration failed")
	}

	go func(email, name, token string) {
		body := "<p>Hello " + name + ",</p><p>please confirm your account by opening /activate?token=" + token + "</p>"
		if err := mail.SendMail(email, "Activate your account", body); err != nil {
			log.Warnf("activation mail to %s failed: %v", email, err)
		}
	}(user.Email, user.Name, user.ActivationToken)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"id":     user.ID,
		"email":  user.Email,
		"status": user.Status,
	})
}

// HandleActivate flips an inactive account to active via its token.
func HandleActivate(c *fiber.Ctx) error {
	token := c.Query("token")
	if token == "" {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "missing token")
	}

	db := database.GetDB()
	var user models.User
	if err := db.Where("activation_token = ?", token).First(&user).Error; err != nil {
		return jsonError(c, fiber.StatusNotFound, "not_found", "invalid activation token")
	}

	user.Status = models.STATUS_ACTIVE
	user.ActivationToken = ""
	if err := db.Save(&user).Error; err != nil {
		log.Errorf("failed to activate user %d: %v", user.ID, err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "activation failed")
	}

	return c.JSON(fiber.Map{"status": user.Status})
}

// HandleLogin verifies credentials and establishes the session.
func HandleLogin(c *fiber.Ctx) error {
	var req loginRequest
	if err := c.BodyParser(&req); err != nil {
		return jsonError(c, fiber.StatusBadRequest, "invalid_request", "malformed request body")
	}

	db := database.GetDB()
	var user models.User
	// notice: in production you should not inform the user
	// with detailed messages about login failures
	if err := db.Where("email = ?", req.Email).First(&user).Error; err != nil {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login failed")
	}
	if !user.CheckPassword(req.Password) {
		return jsonError(c, fiber.StatusUnauthorized, "unauthorized", "login failed")
	}
	if user.Status == models.STATUS_DISABLED {
		return jsonError(c, fiber.StatusForbidden, "forbidden", "account is disabled")
	}

	sess, err := session.GetSessionStore().Get(c)
	if err != nil {
		log.Errorf("session init failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "login failed")
	}
	sess.Set(AUTH_KEY, true)
	sess.Set(USER_ID, user.ID)
	sess.Set(USER_NAME, user.Name)
	sess.Set(USER_IS_ADMIN, user.Role == models.ROLE_ADMIN)
	if err := sess.Save(); err != nil {
		log.Errorf("session save failed: %v", err)
		return jsonError(c, fiber.StatusInternalServerError, "internal_server_error", "login failed")
	}

	_ = db.Model(&user).UpdateColumn("last_login_at", time.Now()).Error

	return c.JSON(fiber.Map{
		"id":       user.ID,
		"name":     user.Name,
		"is_admin": user.Role == models.ROLE_ADMIN,
	})
}

// HandleLogout destroys the session.
func HandleLogout(c *fiber.Ctx) error {
	sess, err := session.GetSessionStore().Get(c)
	if err == nil {
		if err := sess.Destroy(); err != nil {
			log.Warnf("session destroy failed: %v", err)
		}
	}
	return c.JSON(fiber.Map{"ok": true})
}
