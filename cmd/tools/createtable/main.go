package main

import (
	"log"
	"os"

	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func main() {
	dsn := os.Getenv("DB_DSN")
	if dsn == "" {
		dsn = "paloma:paloma@tcp(localhost:3306)/paloma_go?parseTime=true&multiStatements=true&loc=Local"
	}

	db, err := gorm.Open(mysql.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("Failed to get DB: %v", err)
	}

	sql := `
	CREATE TABLE IF NOT EXISTS orders (
	  id CHAR(36) NOT NULL,
	  total DECIMAL(10,2) NOT NULL,
	  currency CHAR(3) NOT NULL DEFAULT 'USD',
	  status VARCHAR(16) NOT NULL,
	  first_name VARCHAR(100),
	  last_name VARCHAR(100),
	  name VARCHAR(200),
	  email VARCHAR(255),
	  billing_address JSON,
	  booking_dates JSON,
	  number_of_hunters INT NOT NULL DEFAULT 0,
	  party_deck_dates JSON,
	  line_items JSON,
	  payment_link_id VARCHAR(128),
	  payment_link_url VARCHAR(512),
	  gateway_data JSON,
	  last_webhook JSON,
	  created_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  updated_at DATETIME(3) NOT NULL DEFAULT CURRENT_TIMESTAMP(3),
	  PRIMARY KEY (id),
	  KEY ix_orders_status (status)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;

	CREATE TABLE IF NOT EXISTS availability (
	  date CHAR(10) NOT NULL,
	  hunters_booked INT NOT NULL DEFAULT 0,
	  party_deck_booked TINYINT(1) NOT NULL DEFAULT 0,
	  in_season TINYINT(1) NOT NULL DEFAULT 1,
	  PRIMARY KEY (date)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;
	`

	if _, err := sqlDB.Exec(sql); err != nil {
		log.Fatalf("Failed to create tables: %v", err)
	}

	log.Println("✓ orders table created successfully")
	log.Println("✓ availability table created successfully")
}
