package database

import (
	"fmt"
	"log"

	"qbank_review_backend/internal/config"
	"qbank_review_backend/internal/model"

	"golang.org/x/crypto/bcrypt"
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

	if err := Migrate(db); err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	seedDefaults(db)

	return db, nil
}

// Migrate 建表，测试库也复用
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.User{},
		&model.Exam{},
		&model.Subject{},
		&model.Topic{},
		&model.Classification{},
		&model.Question{},
		&model.QuestionHistory{},
		&model.QuestionComment{},
	)
}

// seedDefaults 首次启动时写入默认超级管理员和示例分类
func seedDefaults(db *gorm.DB) {
	var userCount int64
	db.Model(&model.User{}).Count(&userCount)
	if userCount == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("changeme123"), bcrypt.DefaultCost)
		if err == nil {
			admin := &model.User{
				Name:      "Superadmin",
				Email:     "admin@qbank.local",
				Password:  string(hashed),
				Role:      model.Processor,
				AdminRole: model.Superadmin,
				Status:    model.UserActive,
			}
			db.Create(admin)
			log.Println("Seeded default superadmin (admin@qbank.local), change the password immediately")
		}
	}

	var examCount int64
	db.Model(&model.Exam{}).Count(&examCount)
	if examCount == 0 {
		exam := &model.Exam{Name: "国家统一入学考试", Code: "NEET", Status: model.TaxonomyActive}
		db.Create(exam)

		subjects := map[string][]string{
			"物理": {"力学", "电磁学", "光学"},
			"化学": {"有机化学", "无机化学"},
			"数学": {"代数", "几何", "微积分"},
		}
		for name, topics := range subjects {
			subject := &model.Subject{Name: name, Status: model.TaxonomyActive}
			db.Create(subject)
			for _, t := range topics {
				db.Create(&model.Topic{Name: t, SubjectID: subject.ID, Status: model.TaxonomyActive})
			}
		}
	}
}
