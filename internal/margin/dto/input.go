package dto

type BulkMarginInput struct {
	ProductIDs []int64 `json:"product_ids"`
}

type AssignCategoryInput struct {
	Category string `json:"category"`
}
