package intake

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ehr/intake/internal/platform/docstore"
)

// ErrPathOutsideOutputDir rejects a save path that resolves outside the
// configured output directory.
var ErrPathOutsideOutputDir = errors.New("save path must be inside the output directory")

// Handler exposes one editing session to a local browser form.
type Handler struct {
	svc       *Service
	session   *Session
	outputDir string
}

func NewHandler(svc *Service, session *Session, outputDir string) *Handler {
	return &Handler{svc: svc, session: session, outputDir: outputDir}
}

func (h *Handler) RegisterRoutes(api *echo.Group) {
	api.GET("/catalog", h.GetCatalog)
	api.GET("/form", h.GetForm)
	api.DELETE("/form", h.ClearForm)
	api.PUT("/form/fields/:field", h.ChangeField)
	api.POST("/form/tests/:collection", h.AppendTest)
	api.DELETE("/form/tests/:collection/last", h.RemoveLastTest)
	api.GET("/form/filename", h.SuggestFilename)
	api.POST("/form/save", h.Save)
}

// requireJSON rejects bodies that a cross-site HTML form or simple request
// could send. Every route that changes the session goes through it.
func requireJSON(c echo.Context) error {
	ctype := c.Request().Header.Get(echo.HeaderContentType)
	if !strings.HasPrefix(strings.ToLower(strings.TrimSpace(ctype)), echo.MIMEApplicationJSON) {
		return echo.NewHTTPError(http.StatusUnsupportedMediaType, "Content-Type must be application/json")
	}
	return nil
}

type formResponse struct {
	SessionID string   `json:"session_id"`
	Form      Snapshot `json:"form"`
}

func (h *Handler) formResponse(s FormState) formResponse {
	return formResponse{SessionID: h.session.ID.String(), Form: s.Snapshot()}
}

func (h *Handler) GetCatalog(c echo.Context) error {
	return c.JSON(http.StatusOK, DefaultCatalog())
}

func (h *Handler) GetForm(c echo.Context) error {
	return c.JSON(http.StatusOK, h.formResponse(h.session.State()))
}

func (h *Handler) ClearForm(c echo.Context) error {
	var cleared FormState
	_ = h.session.Apply(func(s FormState) (FormState, error) {
		cleared = s.Clear()
		return cleared, nil
	})
	return c.JSON(http.StatusOK, h.formResponse(cleared))
}

type fieldChangeRequest struct {
	Value string `json:"value"`
}

func (h *Handler) ChangeField(c echo.Context) error {
	id, err := ParseFieldID(c.Param("field"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err := requireJSON(c); err != nil {
		return err
	}
	var req fieldChangeRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var outcome ValidationOutcome
	err = h.session.Apply(func(s FormState) (FormState, error) {
		next, out, err := s.OnFieldChange(id, req.Value)
		outcome = out
		return next, err
	})
	if err != nil {
		if errors.Is(err, ErrReadOnlyField) {
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		}
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	return c.JSON(http.StatusOK, outcome)
}

type collectionResponse struct {
	Collection CollectionKind `json:"collection"`
	Count      int            `json:"count"`
}

func (h *Handler) AppendTest(c echo.Context) error {
	kind, err := ParseCollectionKind(c.Param("collection"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}
	if err := requireJSON(c); err != nil {
		return err
	}
	body, err := io.ReadAll(c.Request().Body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	entry, err := DecodeTestEntry(kind, body)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	var count int
	err = h.session.Apply(func(s FormState) (FormState, error) {
		next, err := s.AppendTest(entry)
		count = next.Tests().Len(kind)
		return next, err
	})
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	return c.JSON(http.StatusCreated, collectionResponse{Collection: kind, Count: count})
}

func (h *Handler) RemoveLastTest(c echo.Context) error {
	kind, err := ParseCollectionKind(c.Param("collection"))
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound, err.Error())
	}

	var count int
	_ = h.session.Apply(func(s FormState) (FormState, error) {
		next, err := s.RemoveLastTest(kind)
		count = next.Tests().Len(kind)
		return next, err
	})
	return c.JSON(http.StatusOK, collectionResponse{Collection: kind, Count: count})
}

func (h *Handler) SuggestFilename(c echo.Context) error {
	name := strings.TrimSpace(h.session.State().Value(FieldName))
	return c.JSON(http.StatusOK, map[string]string{
		"filename": DefaultFilename(name, h.svc.now()),
	})
}

// saveRequest carries the file-picker answer. Cancel reports a dismissed
// picker; an empty Path saves into the configured output directory. A
// relative Path is taken relative to the output directory and an absolute
// one must lie inside it. Overwrite allows replacing an existing file.
type saveRequest struct {
	Path      string `json:"path"`
	Cancel    bool   `json:"cancel"`
	Overwrite bool   `json:"overwrite"`
}

type missingFieldsResponse struct {
	Error         string   `json:"error"`
	MissingFields []string `json:"missing_fields"`
}

func (h *Handler) Save(c echo.Context) error {
	if err := requireJSON(c); err != nil {
		return err
	}
	var req saveRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	choose, err := h.destination(req)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	ctx := c.Request().Context()

	var result SaveResult
	err = h.session.Apply(func(s FormState) (FormState, error) {
		res, next, err := h.svc.Save(ctx, s, choose)
		result = res
		return next, err
	})

	var missing *MissingRequiredFieldsError
	var perr *PersistenceError
	switch {
	case err == nil:
		return c.JSON(http.StatusCreated, result)
	case errors.As(err, &missing):
		return c.JSON(http.StatusUnprocessableEntity, missingFieldsResponse{
			Error:         "missing required fields",
			MissingFields: missing.Fields,
		})
	case errors.Is(err, ErrSaveCancelled):
		return c.JSON(http.StatusOK, map[string]string{"status": "cancelled"})
	case errors.Is(err, docstore.ErrDocumentExists):
		return echo.NewHTTPError(http.StatusConflict, err.Error())
	case errors.As(err, &perr):
		return echo.NewHTTPError(http.StatusInternalServerError, perr.Error())
	default:
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
}

func (h *Handler) destination(req saveRequest) (DestinationFunc, error) {
	if req.Cancel {
		return CancelDestination, nil
	}
	p := strings.TrimSpace(req.Path)
	if p == "" {
		return DirectoryDestination(h.outputDir), nil
	}

	path, err := h.resolvePath(p)
	if err != nil {
		return nil, err
	}
	if req.Overwrite {
		return ReplaceDestination(path), nil
	}
	return FixedDestination(path), nil
}

// resolvePath anchors p in the output directory and rejects anything that
// escapes it.
func (h *Handler) resolvePath(p string) (string, error) {
	root, err := filepath.Abs(h.outputDir)
	if err != nil {
		return "", fmt.Errorf("resolve output directory: %w", err)
	}
	path := p
	if !filepath.IsAbs(path) {
		path = filepath.Join(root, path)
	}
	path = filepath.Clean(path)

	rel, err := filepath.Rel(root, path)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrPathOutsideOutputDir, p)
	}
	return path, nil
}
