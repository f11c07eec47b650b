package api

// swagger:model api.UpdateItemResponse
type UpdateItemResponse struct {
	Uploaded string `json:"uploaded" example:"success"`
}

// swagger:model api.DeleteItemResponse
type DeleteItemResponse struct {
	Deleted string `json:"deleted" example:"success"`
}

// SearchQuery is bound from the query string of the search endpoint.
type SearchQuery struct {
	Name      string `query:"name"`
	Category  string `query:"category"`
	Condition string `query:"condition"`
	AgeYears  string `query:"age_years"`
}
