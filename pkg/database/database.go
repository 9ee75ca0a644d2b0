package database

import (
	"cptncf_backend/internal/config"
	"cptncf_backend/internal/model"
	"fmt"
	"log"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func InitDB(cfg *config.DatabaseConfig) (*gorm.DB, error) {
	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=%s&parseTime=%t&loc=Local",
		cfg.User,
		cfg.Password,
		cfg.Host,
		cfg.Port,
		cfg.DBName,
		cfg.Charset,
		cfg.ParseTime,
	)

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Info),
	})

	if err != nil {
		return nil, err
	}

	log.Println("Database connection established")

	err = db.AutoMigrate(
		&model.User{},
		&model.StudyGroup{},
		&model.Assessment{},
		&model.Question{},
		&model.AnswerOption{},
		&model.Rationale{},
		&model.AssessmentAttempt{},
		&model.ResponseRecord{},
		&model.PeerEvaluation{},
		&model.GamingPattern{},
		&model.InterventionAlert{},
		&model.GradeRecord{},
		&model.Reflection{},
		&model.TeachingMaterial{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	return db, nil
}
