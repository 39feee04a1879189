package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/dustin/go-humanize"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"orghierarchy-backend/core-service/middleware"
	"orghierarchy-backend/shared/database/models"
	"orghierarchy-backend/shared/hierarchy"
	"orghierarchy-backend/shared/storage"
	"orghierarchy-backend/shared/utils/permission"
	"orghierarchy-backend/shared/utils/query"
)

// OrganizationHandler serves the organization hierarchy API.
type OrganizationHandler struct {
	svc         *hierarchy.Service
	logos       storage.LogoStore
	maxLogoSize int64
	log         *logrus.Logger
}

// NewOrganizationHandler wires the handler. logos may be nil, in which case
// logo uploads answer 503.
func NewOrganizationHandler(svc *hierarchy.Service, logos storage.LogoStore, maxLogoSize int64, log *logrus.Logger) *OrganizationHandler {
	return &OrganizationHandler{svc: svc, logos: logos, maxLogoSize: maxLogoSize, log: log}
}

// OrganizationListMeta carries pagination for list endpoints.
type OrganizationListMeta struct {
	Pagination query.PaginationResponse `json:"pagination"`
}

// StatsResponse is the body of the admin stats endpoint.
type StatsResponse struct {
	Total  int64                    `json:"total"`
	ByType map[models.OrgType]int64 `json:"byType"`
}

func requireActor(c *gin.Context) (hierarchy.Actor, bool) {
	actor, ok := middleware.CurrentActor(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, ErrorResponse{Error: "authentication required"})
	}
	return actor, ok
}

func (h *OrganizationHandler) pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		respondValidation(c, "organization id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// ListOrganizations lists organizations with pagination, filters and search
// @Summary List organizations
// @Description Paginated list across the whole forest
// @Tags organizations
// @Produce json
// @Param page query int false "Page number (default: 1)"
// @Param limit query int false "Items per page (default: 20, max: 100)"
// @Param search query string false "Search term across name and slug"
// @Param filters[status] query string false "Filter by status (ACTIVE, INACTIVE, SUSPENDED)"
// @Param filters[orgType] query string false "Comma separated organization types"
// @Param filters[planTier] query string false "Comma separated plan tiers"
// @Param filters[parentOrgId] query string false "Filter by parent organization ID"
// @Param sort[field] query string false "Sort field (name, created_at)"
// @Param sort[order] query string false "Sort order (asc, desc)"
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /organizations [get]
func (h *OrganizationHandler) ListOrganizations(c *gin.Context) {
	params := query.ParseQueryParams(c)

	orgs, total, err := h.svc.ListOrganizations(c.Request.Context(), params)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	c.JSON(http.StatusOK, DataResponse{
		Data: orgs,
		Meta: OrganizationListMeta{Pagination: query.BuildPaginationResponse(params.Page, params.Limit, total)},
	})
}

// ListRoots lists the organizations that have no parent
// @Summary List root organizations
// @Tags organizations
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Router /organizations/roots [get]
func (h *OrganizationHandler) ListRoots(c *gin.Context) {
	roots, err := h.svc.ListRoots(c.Request.Context())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: roots})
}

// GetOrganization returns one organization and what the caller may add under it
// @Summary Get organization
// @Tags organizations
// @Produce json
// @Param id path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /organizations/{id} [get]
func (h *OrganizationHandler) GetOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}

	org, err := h.svc.GetOrganization(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: org, Meta: h.svc.DescribeChildren(c.Request.Context(), org, actor)})
}

// GetHierarchy returns the subtree rooted at an organization
// @Summary Get organization hierarchy
// @Description Nested tree below the organization, bounded by the configured maximum depth
// @Tags hierarchy
// @Produce json
// @Param id path string true "Root organization ID"
// @Param depth query int false "Levels to load below the root (capped at the maximum depth)"
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /organizations/{id}/hierarchy [get]
func (h *OrganizationHandler) GetHierarchy(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var q HierarchyQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, bindingMessage(err))
		return
	}

	depth := h.svc.Resolver().MaxDepth()
	if q.Depth > 0 && q.Depth < depth {
		depth = q.Depth
	}

	tree, err := h.svc.GetDescendants(c.Request.Context(), id, depth)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: tree, Meta: h.svc.DescribeChildren(c.Request.Context(), &tree.Organization, actor)})
}

// GetChildren lists the direct children of an organization
// @Summary Get direct children
// @Tags hierarchy
// @Produce json
// @Param id path string true "Parent organization ID"
// @Param orgTypes query string false "Comma separated organization types"
// @Param planTiers query string false "Comma separated plan tiers"
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /organizations/{id}/children [get]
func (h *OrganizationHandler) GetChildren(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	var q ChildrenQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		respondValidation(c, bindingMessage(err))
		return
	}

	ctx := c.Request.Context()
	parent, err := h.svc.GetOrganization(ctx, id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	children, err := h.svc.GetDirectChildren(ctx, id, q.filter())
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: children, Meta: h.svc.DescribeChildren(ctx, parent, actor)})
}

// CreateChild creates an organization under a parent
// @Summary Create child organization
// @Description Creates a child under the parent, inheriting the parent's settings unless told otherwise
// @Tags hierarchy
// @Accept json
// @Produce json
// @Param id path string true "Parent organization ID"
// @Param request body handlers.CreateChildRequest true "Child organization"
// @Security BearerAuth
// @Success 201 {object} handlers.DataResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 401 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 409 {object} handlers.ErrorResponse
// @Failure 500 {object} handlers.ErrorResponse
// @Router /organizations/{id}/children [post]
func (h *OrganizationHandler) CreateChild(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	parentID, ok := h.pathID(c)
	if !ok {
		return
	}

	// Permission comes before any body validation.
	if err := h.svc.Authorize(c.Request.Context(), actor, permission.ActionHierarchyManage); err != nil {
		respondError(c, h.log, err)
		return
	}

	var req CreateChildRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondValidation(c, bindingMessage(err))
		return
	}

	org, err := h.svc.CreateChild(c.Request.Context(), req.toInput(parentID, actor))
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, DataResponse{Data: org})
}

// GetAncestors returns the chain from the root down to the organization's parent
// @Summary Get ancestors
// @Tags hierarchy
// @Produce json
// @Param id path string true "Organization ID"
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /organizations/{id}/ancestors [get]
func (h *OrganizationHandler) GetAncestors(c *gin.Context) {
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ancestors, err := h.svc.GetAncestors(c.Request.Context(), id)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: ancestors})
}

// DeleteOrganization removes an organization without children
// @Summary Delete organization
// @Tags organizations
// @Param id path string true "Organization ID"
// @Security BearerAuth
// @Success 204
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Router /organizations/{id} [delete]
func (h *OrganizationHandler) DeleteOrganization(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	if err := h.svc.DeleteOrganization(c.Request.Context(), id, actor); err != nil {
		respondError(c, h.log, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// UploadLogo stores a new logo image and points the organization at it
// @Summary Upload organization logo
// @Tags organizations
// @Accept multipart/form-data
// @Produce json
// @Param id path string true "Organization ID"
// @Param logo formData file true "PNG, JPEG, SVG or WebP image"
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 400 {object} handlers.ErrorResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Failure 404 {object} handlers.ErrorResponse
// @Failure 413 {object} handlers.ErrorResponse
// @Failure 503 {object} handlers.ErrorResponse
// @Router /organizations/{id}/logo [post]
func (h *OrganizationHandler) UploadLogo(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	id, ok := h.pathID(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	if err := h.svc.Authorize(ctx, actor, permission.ActionOrganizationUpdate); err != nil {
		respondError(c, h.log, err)
		return
	}
	if _, err := h.svc.GetOrganization(ctx, id); err != nil {
		respondError(c, h.log, err)
		return
	}
	if h.logos == nil {
		c.AbortWithStatusJSON(http.StatusServiceUnavailable, ErrorResponse{Error: "logo storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("logo")
	if err != nil {
		respondValidation(c, "multipart field \"logo\" is required")
		return
	}
	if fileHeader.Size > h.maxLogoSize {
		c.AbortWithStatusJSON(http.StatusRequestEntityTooLarge, ErrorResponse{
			Error: "logo must not exceed " + humanize.Bytes(uint64(h.maxLogoSize)),
		})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		respondError(c, h.log, hierarchy.UnexpectedError(err))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxLogoSize+1))
	if err != nil {
		respondError(c, h.log, hierarchy.UnexpectedError(err))
		return
	}

	contentType, ext, err := storage.DetectLogo(data)
	if err != nil {
		if errors.Is(err, storage.ErrUnsupportedLogoType) {
			respondValidation(c, storage.ErrUnsupportedLogoType.Error())
			return
		}
		respondError(c, h.log, hierarchy.UnexpectedError(err))
		return
	}

	logoURL, err := h.logos.PutLogo(ctx, id, data, contentType, ext)
	if err != nil {
		respondError(c, h.log, hierarchy.UnexpectedError(err))
		return
	}

	org, err := h.svc.UpdateLogo(ctx, id, actor, logoURL)
	if err != nil {
		respondError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, DataResponse{Data: org})
}

// Stats counts organizations per type
// @Summary Hierarchy statistics
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {object} handlers.DataResponse
// @Failure 403 {object} handlers.ErrorResponse
// @Router /admin/hierarchy/stats [get]
func (h *OrganizationHandler) Stats(c *gin.Context) {
	actor, ok := requireActor(c)
	if !ok {
		return
	}
	counts, err := h.svc.Stats(c.Request.Context(), actor)
	if err != nil {
		respondError(c, h.log, err)
		return
	}

	var total int64
	for _, n := range counts {
		total += n
	}
	c.JSON(http.StatusOK, DataResponse{Data: StatsResponse{Total: total, ByType: counts}})
}
