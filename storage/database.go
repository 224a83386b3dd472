package storage

import (
	"log"
	"os"

	"github.com/joho/godotenv"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/mreglen/banya-backend/models"
)

var DB *gorm.DB

func connectToDB() *gorm.DB {
	// Only load .env in development (when RENDER env var is not set)
	if os.Getenv("RENDER") == "" {
		err := godotenv.Load()
		if err != nil {
			log.Println("Warning: Could not load .env file (this is normal in production)")
		}
	}

	dsn := os.Getenv("DB_CONNECTION_STRING")
	if dsn == "" {
		log.Panic("DB_CONNECTION_STRING environment variable is required")
	}

	db, dbError := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if dbError != nil {
		log.Panic("error connection to db: " + dbError.Error())
	}

	DB = db
	return db
}

// Migrate creates the schema and seeds the reservation status catalog.
// Exported so the same schema can be built against a throwaway database.
func Migrate(db *gorm.DB) error {
	err := db.AutoMigrate(
		&models.Bath{},
		&models.BathFeature{},
		&models.Category{},
		&models.UnitOfMeasurement{},
		&models.Product{},
		&models.EntranceDocument{},
		&models.EntranceDocumentItem{},
		&models.ReservationStatus{},
		&models.Reservation{},
		&models.ReservationProduct{},
		&models.Booking{},
		&models.Role{},
		&models.User{},
	)
	if err != nil {
		return err
	}

	return seedReservationStatuses(db)
}

// seedReservationStatuses fills the status catalog on first start; id 1 is
// the default status for new reservations.
func seedReservationStatuses(db *gorm.DB) error {
	var count int64
	if err := db.Model(&models.ReservationStatus{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	statuses := []models.ReservationStatus{
		{ID: 1, StatusName: "новая"},
		{ID: 2, StatusName: "подтверждена"},
		{ID: 3, StatusName: "завершена"},
		{ID: 4, StatusName: "отменена"},
	}
	return db.Create(&statuses).Error
}

func InitializeDB() *gorm.DB {
	db := connectToDB()
	if err := Migrate(db); err != nil {
		log.Panic("error running migrations: " + err.Error())
	}
	return db
}
