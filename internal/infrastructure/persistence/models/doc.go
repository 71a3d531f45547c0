// Package models holds the GORM persistence models and their conversions
// to and from the domain aggregates.
package models

// All returns every model in dependency order, for AutoMigrate and db-setup
func All() []any {
	return []any{
		&BlockModel{},
		&BuyerModel{},
		&OrderModel{},
		&ProductModel{},
		&EmailTemplateModel{},
		&EmailLogModel{},
		&SyncRunModel{},
	}
}
