package main

import (
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kataras/iris/v12"
	"github.com/kataras/iris/v12/middleware/jwt"

	"github.com/mreglen/banya-backend/routes"
	"github.com/mreglen/banya-backend/storage"
	"github.com/mreglen/banya-backend/utils"
)

func main() {
	// Only load .env in development
	if os.Getenv("RENDER") == "" {
		godotenv.Load()
	}

	storage.InitializeDB()
	storage.InitializeRedis()

	app := iris.New()
	app.Validator = validator.New()

	// CORS for the admin dashboard and the public website
	app.AllowMethods(iris.MethodOptions)
	app.UseRouter(func(ctx iris.Context) {
		ctx.Header("Access-Control-Allow-Origin", ctx.GetHeader("Origin"))
		ctx.Header("Vary", "Origin")
		ctx.Header("Access-Control-Allow-Credentials", "true")
		ctx.Header("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Requested-With")
		ctx.Header("Access-Control-Allow-Methods", "GET,POST,PATCH,PUT,DELETE,OPTIONS")
		if ctx.Method() == iris.MethodOptions {
			ctx.StatusCode(iris.StatusNoContent)
			return
		}
		ctx.Next()
	})

	app.Use(iris.Compression)

	// JWT Verifiers
	accessTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("ACCESS_TOKEN_SECRET")))
	accessTokenVerifier.WithDefaultBlocklist()
	accessTokenVerifierMiddleware := accessTokenVerifier.Verify(func() interface{} {
		return new(utils.AccessToken)
	})

	refreshTokenVerifier := jwt.NewVerifier(jwt.HS256, []byte(os.Getenv("REFRESH_TOKEN_SECRET")))
	refreshTokenVerifier.WithDefaultBlocklist()
	refreshTokenVerifierMiddleware := refreshTokenVerifier.Verify(func() interface{} {
		return new(jwt.Claims)
	})

	refreshTokenVerifier.Extractors = append(refreshTokenVerifier.Extractors, func(ctx iris.Context) string {
		var tokenInput utils.RefreshTokenInput
		if err := ctx.ReadJSON(&tokenInput); err != nil {
			return ""
		}
		return tokenInput.RefreshToken
	})

	public := app.Party("/api")
	{
		public.Get("/baths", routes.GetBaths)
		public.Get("/baths/{id}", routes.GetBath)
		public.Post("/bookings", routes.CreateBooking)
		public.Post("/admin/login", routes.Login)
		public.Post("/admin/refresh", refreshTokenVerifierMiddleware, utils.RefreshToken)
	}

	admin := app.Party("/api/admin", accessTokenVerifierMiddleware, utils.AdminOnlyMiddleware)
	{
		admin.Get("/me", routes.GetCurrentUser)

		admin.Get("/reservations", routes.GetReservations)
		admin.Post("/reservations", routes.CreateReservation)
		admin.Get("/reservations/{id}", routes.GetReservation)
		admin.Put("/reservations/{id}", routes.UpdateReservation)
		admin.Delete("/reservations/{id}", routes.DeleteReservation)
		admin.Get("/reservation-status", routes.GetReservationStatuses)

		admin.Post("/baths", routes.CreateBath)
		admin.Put("/baths/{id}", routes.UpdateBath)
		admin.Delete("/baths/{id}", routes.DeleteBath)

		admin.Get("/products", routes.GetProducts)
		admin.Post("/products", routes.CreateProduct)
		admin.Get("/products/{id}", routes.GetProduct)
		admin.Put("/products/{id}", routes.UpdateProduct)
		admin.Delete("/products/{id}", routes.DeleteProduct)
		admin.Get("/categories", routes.GetCategories)
		admin.Get("/units", routes.GetUnitsOfMeasurement)
		admin.Get("/stock/products", routes.GetStockProducts)

		admin.Get("/documents-entrance", routes.GetEntranceDocuments)
		admin.Post("/documents-entrance", routes.CreateEntranceDocument)
		admin.Get("/documents-entrance/{id}", routes.GetEntranceDocument)
		admin.Put("/documents-entrance/{id}", routes.UpdateEntranceDocument)
		admin.Delete("/documents-entrance/{id}", routes.DeleteEntranceDocument)

		admin.Get("/bookings", routes.GetBookings)
		admin.Patch("/bookings/{id}/read", routes.MarkBookingRead)
		admin.Delete("/bookings/{id}", routes.DeleteBooking)
	}

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	app.Listen(":" + port)
}
