package hierarchy

import "orghierarchy-backend/shared/database/models"

// recommendedChildTypes is ranked most relevant first.
var recommendedChildTypes = map[models.OrgType][]models.OrgType{
	models.OrgTypeStandard:         {models.OrgTypeDepartment, models.OrgTypeDivision, models.OrgTypeBrand},
	models.OrgTypeAgency:           {models.OrgTypeClient, models.OrgTypeBrand, models.OrgTypeDivision},
	models.OrgTypeHoldingCompany:   {models.OrgTypeSubsidiary, models.OrgTypePortfolioCompany, models.OrgTypeBrand, models.OrgTypeDivision},
	models.OrgTypeSubsidiary:       {models.OrgTypeBrand, models.OrgTypeDivision, models.OrgTypeDepartment, models.OrgTypeRegional},
	models.OrgTypeBrand:            {models.OrgTypeSubBrand, models.OrgTypeRegional},
	models.OrgTypeSubBrand:         {models.OrgTypeRegional},
	models.OrgTypeDivision:         {models.OrgTypeDepartment, models.OrgTypeRegional},
	models.OrgTypeDepartment:       nil,
	models.OrgTypeFranchise:        {models.OrgTypeFranchisee, models.OrgTypeRegional},
	models.OrgTypeFranchisee:       nil,
	models.OrgTypeReseller:         {models.OrgTypeClient},
	models.OrgTypeClient:           {models.OrgTypeBrand, models.OrgTypeDepartment},
	models.OrgTypeRegional:         {models.OrgTypeFranchisee, models.OrgTypeDepartment},
	models.OrgTypePortfolioCompany: {models.OrgTypeBrand, models.OrgTypeDivision, models.OrgTypeDepartment},
}

// GetRecommendedChildTypes returns the child types suggested under parent.
// It is advisory only; creation never consults it. Unknown types get an
// empty slice.
func GetRecommendedChildTypes(parent models.OrgType) []models.OrgType {
	ranked := recommendedChildTypes[parent]
	out := make([]models.OrgType, len(ranked))
	copy(out, ranked)
	return out
}
