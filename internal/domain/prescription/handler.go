package prescription

import (
	"errors"
	"net/http"
	"sync"

	"github.com/labstack/echo/v4"
)

// Handler exposes intake processing over HTTP. Requests are processed one at
// a time because journal appends are not safe to interleave.
type Handler struct {
	svc *Service
	mu  sync.Mutex
}

func NewHandler(svc *Service) *Handler {
	return &Handler{svc: svc}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.POST("/prescriptions", h.CreatePrescription)
	api.POST("/remarks/check", h.CheckRemark)
}

func (h *Handler) CreatePrescription(c echo.Context) error {
	var in Intake
	if err := c.Bind(&in); err != nil {
		return bindError(err)
	}

	h.mu.Lock()
	out, err := h.svc.Process(c.Request().Context(), in)
	h.mu.Unlock()

	if err != nil {
		if errors.Is(err, ErrPersistence) {
			return echo.NewHTTPError(http.StatusInternalServerError, "failed to record prescription")
		}
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	if !out.Accepted {
		return c.JSON(http.StatusUnprocessableEntity, out)
	}
	return c.JSON(http.StatusCreated, out)
}

type remarkCheckRequest struct {
	Text     string `json:"text"`
	Category string `json:"category"`
}

type remarkCheckResponse struct {
	Valid  bool   `json:"valid"`
	Reason string `json:"reason,omitempty"`
}

func (h *Handler) CheckRemark(c echo.Context) error {
	var req remarkCheckRequest
	if err := c.Bind(&req); err != nil {
		return bindError(err)
	}
	if err := ValidateRemark(req.Text, req.Category); err != nil {
		return c.JSON(http.StatusOK, remarkCheckResponse{Reason: err.Error()})
	}
	return c.JSON(http.StatusOK, remarkCheckResponse{Valid: true})
}

// bindError keeps the status of an HTTP error raised while reading the body,
// such as 413 from the body limit, and maps anything else to 400.
func bindError(err error) error {
	var he *echo.HTTPError
	if !errors.As(err, &he) {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	var inner *echo.HTTPError
	if he.Code == http.StatusBadRequest && errors.As(he.Internal, &inner) {
		return inner
	}
	return he
}
