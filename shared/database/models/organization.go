package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// OrgType classifies an organization inside a customer hierarchy.
type OrgType string

const (
	OrgTypeStandard         OrgType = "STANDARD"
	OrgTypeAgency           OrgType = "AGENCY"
	OrgTypeHoldingCompany   OrgType = "HOLDING_COMPANY"
	OrgTypeSubsidiary       OrgType = "SUBSIDIARY"
	OrgTypeBrand            OrgType = "BRAND"
	OrgTypeSubBrand         OrgType = "SUB_BRAND"
	OrgTypeDivision         OrgType = "DIVISION"
	OrgTypeDepartment       OrgType = "DEPARTMENT"
	OrgTypeFranchise        OrgType = "FRANCHISE"
	OrgTypeFranchisee       OrgType = "FRANCHISEE"
	OrgTypeReseller         OrgType = "RESELLER"
	OrgTypeClient           OrgType = "CLIENT"
	OrgTypeRegional         OrgType = "REGIONAL"
	OrgTypePortfolioCompany OrgType = "PORTFOLIO_COMPANY"
)

var orgTypes = []OrgType{
	OrgTypeStandard,
	OrgTypeAgency,
	OrgTypeHoldingCompany,
	OrgTypeSubsidiary,
	OrgTypeBrand,
	OrgTypeSubBrand,
	OrgTypeDivision,
	OrgTypeDepartment,
	OrgTypeFranchise,
	OrgTypeFranchisee,
	OrgTypeReseller,
	OrgTypeClient,
	OrgTypeRegional,
	OrgTypePortfolioCompany,
}

// AllOrgTypes returns every organization type in declaration order.
func AllOrgTypes() []OrgType {
	out := make([]OrgType, len(orgTypes))
	copy(out, orgTypes)
	return out
}

func (t OrgType) IsValid() bool {
	for _, known := range orgTypes {
		if t == known {
			return true
		}
	}
	return false
}

// PlanTier is the commercial plan an organization is billed under.
type PlanTier string

const (
	PlanTierFree         PlanTier = "FREE"
	PlanTierStarter      PlanTier = "STARTER"
	PlanTierProfessional PlanTier = "PROFESSIONAL"
	PlanTierEnterprise   PlanTier = "ENTERPRISE"
)

func (p PlanTier) IsValid() bool {
	switch p {
	case PlanTierFree, PlanTierStarter, PlanTierProfessional, PlanTierEnterprise:
		return true
	}
	return false
}

const (
	OrganizationStatusActive   = "ACTIVE"
	OrganizationStatusInactive = "INACTIVE"
)

// Organization is a tenant. ParentOrgID == nil marks a root.
type Organization struct {
	ID             uuid.UUID         `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name           string            `json:"name" gorm:"size:200;not null"`
	Slug           string            `json:"slug" gorm:"size:100;not null;uniqueIndex:idx_organizations_slug"`
	Domain         *string           `json:"domain,omitempty" gorm:"size:255;uniqueIndex:idx_organizations_domain"`
	OrgType        OrgType           `json:"orgType" gorm:"type:varchar(32);not null;index"`
	Status         string            `json:"status" gorm:"size:20;default:'ACTIVE'"`
	ParentOrgID    *uuid.UUID        `json:"parentOrgId" gorm:"type:uuid;index:idx_organizations_parent_org_id"`
	Parent         *Organization     `json:"-" gorm:"foreignKey:ParentOrgID;constraint:OnUpdate:RESTRICT,OnDelete:RESTRICT"`
	HierarchyLevel int               `json:"hierarchyLevel" gorm:"not null"`
	AllowChildOrgs bool              `json:"allowChildOrgs" gorm:"not null"`
	DisplayOrder   int               `json:"displayOrder" gorm:"not null"`
	PlanTier       PlanTier          `json:"planTier" gorm:"type:varchar(32);not null"`
	Industry       string            `json:"industry,omitempty" gorm:"size:100"`
	CompanySize    string            `json:"companySize,omitempty" gorm:"size:50"`
	Country        string            `json:"country,omitempty" gorm:"size:2"`
	Timezone       string            `json:"timezone,omitempty" gorm:"size:64"`
	LogoURL        string            `json:"logoUrl,omitempty" gorm:"size:500"`
	BrandColor     string            `json:"brandColor,omitempty" gorm:"size:9"`
	Settings       datatypes.JSONMap `json:"settings" gorm:"type:jsonb;not null;default:'{}'"`
	CreatedAt      time.Time         `json:"createdAt"`
	UpdatedAt      time.Time         `json:"updatedAt"`
}

// IsRoot reports whether the organization sits at the top of its tree.
func (o *Organization) IsRoot() bool {
	return o.ParentOrgID == nil
}
