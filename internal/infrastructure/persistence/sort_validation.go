package persistence

import (
	"strings"

	"github.com/exportdesk/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	if strings.ToUpper(strings.TrimSpace(orderDir)) == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// API field names (camelCase) are accepted through the whitelist's keys.
// Returns defaultField when the input is empty or not allowed.
func ValidateSortField(sortField string, allowedFields map[string]string, defaultField string) string {
	if column, ok := allowedFields[strings.TrimSpace(sortField)]; ok {
		return column
	}
	return defaultField
}

// OrderSortFields maps accepted sort keys to order columns
var OrderSortFields = map[string]string{
	"created_at":     "created_at",
	"createdAt":      "created_at",
	"updated_at":     "updated_at",
	"updatedAt":      "updated_at",
	"order_ref":      "order_ref",
	"orderRef":       "order_ref",
	"order_date":     "order_date",
	"orderDate":      "order_date",
	"due_date":       "due_date",
	"dueDate":        "due_date",
	"total_amount":   "total_amount",
	"totalAmount":    "total_amount",
	"buyer_name":     "buyer_name",
	"buyerName":      "buyer_name",
	"payment_status": "payment_status",
	"paymentStatus":  "payment_status",
	"ship_status":    "ship_status",
	"shipStatus":     "ship_status",
}

// BuyerSortFields maps accepted sort keys to buyer columns
var BuyerSortFields = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"name":       "name",
	"email":      "email",
	"company":    "company",
	"country":    "country",
}

// BlockSortFields maps accepted sort keys to block columns
var BlockSortFields = map[string]string{
	"created_at":        "created_at",
	"createdAt":         "created_at",
	"name":              "name",
	"status":            "status",
	"target_ship_month": "target_ship_month",
	"targetShipMonth":   "target_ship_month",
}

// ProductSortFields maps accepted sort keys to product columns
var ProductSortFields = map[string]string{
	"created_at": "created_at",
	"createdAt":  "created_at",
	"sku":        "sku",
	"name":       "name",
	"price":      "price",
}

// paginate applies ordering and the page window
func paginate(query *gorm.DB, filter shared.Filter, allowed map[string]string, defaultField string) *gorm.DB {
	column := ValidateSortField(filter.OrderBy, allowed, defaultField)
	query = query.Order(column + " " + ValidateSortOrder(filter.OrderDir))
	if filter.PageSize > 0 {
		query = query.Offset(filter.Offset()).Limit(filter.PageSize)
	}
	return query
}

// search matches the term case-insensitively against any of columns.
// LOWER() LIKE keeps the query portable between PostgreSQL and SQLite.
func search(query *gorm.DB, term string, columns ...string) *gorm.DB {
	term = strings.TrimSpace(term)
	if term == "" || len(columns) == 0 {
		return query
	}
	pattern := "%" + escapeLike(strings.ToLower(term)) + "%"
	clauses := make([]string, len(columns))
	args := make([]any, len(columns))
	for i, c := range columns {
		clauses[i] = "LOWER(" + c + ") LIKE ? ESCAPE '\\'"
		args[i] = pattern
	}
	return query.Where("("+strings.Join(clauses, " OR ")+")", args...)
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}
