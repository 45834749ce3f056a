package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/estatedesk/backoffice/pkg/api/errors"
	"github.com/estatedesk/backoffice/pkg/developers"
	"github.com/estatedesk/backoffice/pkg/locations"
	"github.com/estatedesk/backoffice/pkg/models"
	"github.com/estatedesk/backoffice/pkg/projects"
)

// CatalogHandler handles the project, developer and location catalog
// endpoints.
type CatalogHandler struct {
	projectService   *projects.Service
	developerService *developers.Service
	locationService  *locations.Service
	validator        *validator.Validate
}

// NewCatalogHandler creates a new catalog handler.
func NewCatalogHandler(projectService *projects.Service, developerService *developers.Service, locationService *locations.Service) *CatalogHandler {
	return &CatalogHandler{
		projectService:   projectService,
		developerService: developerService,
		locationService:  locationService,
		validator:        validator.New(),
	}
}

// CreateProject handles POST /projects.
func (h *CatalogHandler) CreateProject(c echo.Context) error {
	var req projects.ProjectRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, project)
}

// GetProject handles GET /projects/:id.
func (h *CatalogHandler) GetProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	project, err := h.projectService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// ListProjects handles GET /projects?developerId=...
func (h *CatalogHandler) ListProjects(c echo.Context) error {
	var developerID *uint
	if raw := c.QueryParam("developerId"); raw != "" {
		id, err := strconv.ParseUint(raw, 10, 32)
		if err != nil {
			return c.JSON(http.StatusBadRequest, models.ErrorResponse{
				Error:   "invalid_parameter",
				Message: "developerId must be a positive integer",
			})
		}
		v := uint(id)
		developerID = &v
	}

	list, err := h.projectService.List(c.Request().Context(), developerID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"projects": list})
}

// UpdateProject handles PUT /projects/:id.
func (h *CatalogHandler) UpdateProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req projects.ProjectRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	project, err := h.projectService.Update(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, project)
}

// DeleteProject handles DELETE /projects/:id.
func (h *CatalogHandler) DeleteProject(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.projectService.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateDeveloper handles POST /developers.
func (h *CatalogHandler) CreateDeveloper(c echo.Context) error {
	var req developers.DeveloperRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	developer, err := h.developerService.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, developer)
}

// GetDeveloper handles GET /developers/:id.
func (h *CatalogHandler) GetDeveloper(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	developer, err := h.developerService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, developer)
}

// ListDevelopers handles GET /developers.
func (h *CatalogHandler) ListDevelopers(c echo.Context) error {
	list, err := h.developerService.List(c.Request().Context())
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"developers": list})
}

// UpdateDeveloper handles PUT /developers/:id.
func (h *CatalogHandler) UpdateDeveloper(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req developers.DeveloperRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	developer, err := h.developerService.Update(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, developer)
}

// DeleteDeveloper handles DELETE /developers/:id.
func (h *CatalogHandler) DeleteDeveloper(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.developerService.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

// CreateLocation handles POST /locations.
func (h *CatalogHandler) CreateLocation(c echo.Context) error {
	var req locations.LocationRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	location, err := h.locationService.Create(c.Request().Context(), req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, location)
}

// GetLocation handles GET /locations/:id.
func (h *CatalogHandler) GetLocation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	location, err := h.locationService.GetByID(c.Request().Context(), id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, location)
}

// ListLocations handles GET /locations?state=...
func (h *CatalogHandler) ListLocations(c echo.Context) error {
	list, err := h.locationService.List(c.Request().Context(), c.QueryParam("state"))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]interface{}{"locations": list})
}

// UpdateLocation handles PUT /locations/:id.
func (h *CatalogHandler) UpdateLocation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	var req locations.LocationRequest
	if err := h.bind(c, &req); err != nil {
		return err
	}

	location, err := h.locationService.Update(c.Request().Context(), id, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, location)
}

// DeleteLocation handles DELETE /locations/:id.
func (h *CatalogHandler) DeleteLocation(c echo.Context) error {
	id, err := parseID(c)
	if err != nil {
		return err
	}

	if err := h.locationService.Delete(c.Request().Context(), id); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (h *CatalogHandler) bind(c echo.Context, req interface{}) error {
	if err := c.Bind(req); err != nil {
		return badRequest(c, "invalid_body", "Invalid request body")
	}
	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, "validation_error", err.Error())
	}
	return nil
}
