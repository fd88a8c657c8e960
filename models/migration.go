package models

import (
	"bitbucket.org/shumbadigital/lodgebooks_backend/config"
)

func MigrateTable() {
	db := config.GetDB()
	err := db.AutoMigrate(
		&Business{},
		&Residence{},
		&Account{},
		&LedgerTransaction{},
		&LedgerLine{},
		&Payment{},
		&PaymentAllocation{},
		&Expense{},
		&AccountDailyBalance{},
	)
	if err != nil {
		panic(err)
	}
}
