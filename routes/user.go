package routes

import (
	"errors"

	"github.com/kataras/iris/v12"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

type LoginInput struct {
	Username string `json:"username" validate:"required,max=50"`
	Password string `json:"password" validate:"required"`
}

func Login(ctx iris.Context) {
	var input LoginInput
	if err := ctx.ReadJSON(&input); err != nil {
		utils.HandleValidationErrors(err, ctx)
		return
	}

	errorMsg := "Invalid username or password."

	var user models.User
	err := storage.DB.Preload("Role").Where("username = ?", input.Username).First(&user).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
			return
		}
		utils.CreateInternalServerError(ctx)
		return
	}

	if !user.IsActive {
		utils.CreateError(iris.StatusForbidden, "Credentials Error", "Account is deactivated", ctx)
		return
	}

	passwordErr := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password))
	if passwordErr != nil {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", errorMsg, ctx)
		return
	}

	tokenPair, tokenErr := utils.CreateTokenPair(user.ID, user.Role.Name)
	if tokenErr != nil {
		utils.CreateInternalServerError(ctx)
		return
	}

	ctx.JSON(iris.Map{
		"user":   user,
		"tokens": tokenPair,
	})
}

// GetCurrentUser answers with the staff account behind the access token.
func GetCurrentUser(ctx iris.Context) {
	userIDValue := ctx.Values().Get("userID")
	userID, ok := userIDValue.(uint)
	if !ok {
		utils.CreateError(iris.StatusUnauthorized, "Credentials Error", "User not authenticated", ctx)
		return
	}

	var user models.User
	if err := storage.DB.Preload("Role").First(&user, userID).Error; err != nil {
		utils.CreateNotFound(ctx)
		return
	}
	ctx.JSON(user)
}
