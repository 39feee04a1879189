package handlers

import (
	"fmt"
	"strings"

	"github.com/gin-gonic/gin/binding"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/utils/query"
)

// CreateChildRequest is the body of POST /organizations/{id}/children.
// Required fields and enum values are checked by the hierarchy service so
// that rejections come back in a fixed order; binding only checks the
// format of optional profile fields.
type CreateChildRequest struct {
	Name            string                 `json:"name" binding:"max=200" example:"Acme Widgets"`
	Slug            string                 `json:"slug" binding:"max=80" example:"acme-widgets"`
	OrgType         string                 `json:"orgType" example:"SUBSIDIARY"`
	PlanTier        string                 `json:"planTier" example:"PROFESSIONAL"`
	InheritSettings *bool                  `json:"inheritSettings"`
	Settings        map[string]interface{} `json:"settings"`
	AllowChildOrgs  *bool                  `json:"allowChildOrgs"`
	DisplayOrder    *int                   `json:"displayOrder"`
	Industry        string                 `json:"industry" binding:"max=100"`
	CompanySize     string                 `json:"companySize" binding:"max=50"`
	Country         string                 `json:"country" binding:"omitempty,len=2,alpha"`
	Timezone        string                 `json:"timezone" binding:"omitempty,timezone"`
	LogoURL         string                 `json:"logoUrl" binding:"omitempty,url,max=500"`
	BrandColor      string                 `json:"brandColor" binding:"omitempty,hexcolor"`
	Domain          string                 `json:"domain" binding:"omitempty,fqdn,max=255"`
}

func (r CreateChildRequest) toInput(parentID uuid.UUID, actor hierarchy.Actor) hierarchy.CreateChildInput {
	return hierarchy.CreateChildInput{
		ParentOrgID:     parentID,
		Name:            r.Name,
		Slug:            r.Slug,
		OrgType:         models.OrgType(strings.ToUpper(strings.TrimSpace(r.OrgType))),
		PlanTier:        models.PlanTier(strings.ToUpper(strings.TrimSpace(r.PlanTier))),
		InheritSettings: r.InheritSettings,
		Settings:        r.Settings,
		AllowChildOrgs:  r.AllowChildOrgs,
		DisplayOrder:    r.DisplayOrder,
		Industry:        r.Industry,
		CompanySize:     r.CompanySize,
		Country:         r.Country,
		Timezone:        r.Timezone,
		LogoURL:         r.LogoURL,
		BrandColor:      r.BrandColor,
		Domain:          r.Domain,
		Actor:           actor,
	}
}

// ChildrenQuery filters GET /organizations/{id}/children.
type ChildrenQuery struct {
	OrgTypes  string `form:"orgTypes" binding:"omitempty,orgtypes"`
	PlanTiers string `form:"planTiers" binding:"omitempty,plantiers"`
}

func (q ChildrenQuery) filter() hierarchy.ChildFilter {
	var f hierarchy.ChildFilter
	for _, t := range query.SplitList(strings.ToUpper(q.OrgTypes)) {
		f.OrgTypes = append(f.OrgTypes, models.OrgType(t))
	}
	for _, t := range query.SplitList(strings.ToUpper(q.PlanTiers)) {
		f.PlanTiers = append(f.PlanTiers, models.PlanTier(t))
	}
	return f
}

// HierarchyQuery limits GET /organizations/{id}/hierarchy.
type HierarchyQuery struct {
	Depth int `form:"depth" binding:"omitempty,min=1"`
}

// RegisterValidators adds the hierarchy enum validators to gin's engine.
func RegisterValidators() error {
	v, ok := binding.Validator.Engine().(*validator.Validate)
	if !ok {
		return fmt.Errorf("unexpected validator engine %T", binding.Validator.Engine())
	}
	if err := v.RegisterValidation("orgtypes", validateOrgTypes); err != nil {
		return err
	}
	return v.RegisterValidation("plantiers", validatePlanTiers)
}

func validateOrgTypes(fl validator.FieldLevel) bool {
	for _, t := range query.SplitList(strings.ToUpper(fl.Field().String())) {
		if !models.OrgType(t).IsValid() {
			return false
		}
	}
	return true
}

func validatePlanTiers(fl validator.FieldLevel) bool {
	for _, t := range query.SplitList(strings.ToUpper(fl.Field().String())) {
		if !models.PlanTier(t).IsValid() {
			return false
		}
	}
	return true
}
