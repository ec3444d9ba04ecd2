package database

import (
	"fmt"
	"log"

	"lingo_edu_backend/internal/config"
	"lingo_edu_backend/internal/model"

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

	err = db.AutoMigrate(
		&model.User{},
		&model.Class{},
		&model.ClassStudent{},
		&model.Roadmap{},
		&model.Topic{},
		&model.VocabEntry{},
		&model.Exercise{},
		&model.MediaOutbox{},
	)

	if err != nil {
		return nil, err
	}

	log.Println("Database migration completed")

	// 首次启动时创建默认管理员，密码必须在首次登录后修改
	var count int64
	db.Model(&model.User{}).Count(&count)
	if count == 0 {
		hashed, err := bcrypt.GenerateFromPassword([]byte("admin123456"), bcrypt.DefaultCost)
		if err == nil {
			admin := &model.User{
				Name:     "Administrator",
				Email:    "admin@lingo.local",
				Password: string(hashed),
				Role:     model.Admin,
				Language: "zh",
			}
			db.Create(admin)
			log.Println("Default admin account created: admin@lingo.local")
		}
	}

	// 默认学习路线（空库时插入演示数据，方便本地开发）
	var rmCount int64
	db.Model(&model.Roadmap{}).Count(&rmCount)
	if rmCount == 0 {
		starter := &model.Roadmap{
			Name:        "英语入门",
			Description: "基础词汇与日常会话",
			Category:    "english",
			Published:   true,
		}
		if db.Create(starter).Error == nil {
			defaultTopics := []model.Topic{
				{RoadmapID: starter.ID, Name: "动物", Description: "常见动物词汇", Order: 1},
				{RoadmapID: starter.ID, Name: "食物", Description: "饮食相关词汇", Order: 2},
				{RoadmapID: starter.ID, Name: "日常问候", Description: "打招呼与自我介绍", Order: 3},
			}
			for _, t := range defaultTopics {
				db.Create(&t)
			}
		}
	}

	return db, nil
}
