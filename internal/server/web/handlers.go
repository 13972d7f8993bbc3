package web

import (
	"errors"
	"net/http"
	"net/url"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/dmitrijs2005/taskkeeper/internal/server/attachments"
	"github.com/dmitrijs2005/taskkeeper/internal/server/models"
	"github.com/dmitrijs2005/taskkeeper/internal/server/services"
)

type recordResponse struct {
	OK       bool   `json:"ok"`
	Filename string `json:"filename,omitempty"`
	Error    string `json:"error,omitempty"`
}

type indexPage struct {
	Tasks []*models.TaskWithOwner
	User  *models.User
	Error string
}

type taskPage struct {
	Task *services.TaskView
	User *models.User
}

type authPage struct {
	Error string
	Next  string
}

func (s *Server) index(c echo.Context) error {
	tasks, err := s.tasks.List(c.Request().Context())
	if err != nil {
		s.logger.Error(c.Request().Context(), "listing tasks", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return c.Render(http.StatusOK, "index.html", indexPage{
		Tasks: tasks,
		User:  s.currentUser(c),
		Error: c.QueryParam("error"),
	})
}

func (s *Server) addTask(c echo.Context) error {
	ctx := c.Request().Context()

	in := services.AddTaskInput{
		Title:         c.FormValue("title"),
		Description:   c.FormValue("description"),
		DueDate:       c.FormValue("due_date"),
		RecorderToken: c.FormValue("attachment_path"),
	}

	if fh, err := c.FormFile("file"); err == nil && fh != nil && fh.Filename != "" {
		src, err := fh.Open()
		if err != nil {
			s.logger.Error(ctx, "opening upload", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		defer src.Close()
		in.FileName = fh.Filename
		in.File = src
	}

	_, err := s.tasks.Add(ctx, in, requester(c).ID)
	if err != nil {
		if msg := userErrorMessage(err); msg != "" {
			return c.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msg))
		}
		s.logger.Error(ctx, "adding task", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) viewTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	view, err := s.tasks.View(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		s.logger.Error(c.Request().Context(), "viewing task", "task_id", id, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	return c.Render(http.StatusOK, "task.html", taskPage{Task: view, User: s.currentUser(c)})
}

func (s *Server) toggleTask(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusNotFound)
	}

	_, err = s.tasks.Toggle(c.Request().Context(), id, requester(c).ID)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			return echo.NewHTTPError(http.StatusNotFound)
		case errors.Is(err, common.ErrorForbidden):
			return echo.NewHTTPError(http.StatusForbidden, "you can only toggle your own tasks")
		default:
			s.logger.Error(c.Request().Context(), "toggling task", "task_id", id, "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
	}

	return c.Redirect(http.StatusSeeOther, "/")
}

func (s *Server) recordUpload(c echo.Context) error {
	ctx := c.Request().Context()

	fh, err := c.FormFile("recorded_blob")
	if err != nil {
		return c.JSON(http.StatusBadRequest, recordResponse{OK: false, Error: "No file uploaded"})
	}
	if fh.Filename == "" {
		return c.JSON(http.StatusBadRequest, recordResponse{OK: false, Error: "Empty filename"})
	}

	src, err := fh.Open()
	if err != nil {
		s.logger.Error(ctx, "opening recorded blob", "error", err)
		return c.JSON(http.StatusInternalServerError, recordResponse{OK: false, Error: "upload failed"})
	}
	defer src.Close()

	name, err := s.uploads.Accept(ctx, fh.Filename, src)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnsupportedType):
			return c.JSON(http.StatusBadRequest, recordResponse{OK: false, Error: "File type not allowed"})
		case errors.Is(err, common.ErrorMissingFile):
			return c.JSON(http.StatusBadRequest, recordResponse{OK: false, Error: "No file uploaded"})
		default:
			s.logger.Error(ctx, "saving recorded blob", "error", err)
			return c.JSON(http.StatusInternalServerError, recordResponse{OK: false, Error: "upload failed"})
		}
	}

	return c.JSON(http.StatusOK, recordResponse{OK: true, Filename: name})
}

func (s *Server) serveUpload(c echo.Context) error {
	// re-sanitize so a crafted path can never escape the store
	name := attachments.Sanitize(c.Param("filename"))

	rc, err := s.store.Open(c.Request().Context(), name)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return echo.NewHTTPError(http.StatusNotFound)
		}
		s.logger.Error(c.Request().Context(), "serving upload", "name", name, "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}
	defer rc.Close()

	return c.Stream(http.StatusOK, contentTypeForName(name), rc)
}

func (s *Server) registerForm(c echo.Context) error {
	return c.Render(http.StatusOK, "register.html", authPage{})
}

func (s *Server) register(c echo.Context) error {
	_, err := s.users.Register(c.Request().Context(),
		c.FormValue("username"), c.FormValue("password"), c.FormValue("confirm"))
	if err != nil {
		msg := userErrorMessage(err)
		if msg == "" {
			s.logger.Error(c.Request().Context(), "registering user", "error", err)
			return echo.NewHTTPError(http.StatusInternalServerError)
		}
		return c.Render(http.StatusOK, "register.html", authPage{Error: msg})
	}

	return c.Redirect(http.StatusSeeOther, "/login")
}

func (s *Server) loginForm(c echo.Context) error {
	return c.Render(http.StatusOK, "login.html", authPage{Next: safeNext(c.QueryParam("next"))})
}

func (s *Server) login(c echo.Context) error {
	next := safeNext(c.FormValue("next"))

	user, err := s.users.Authenticate(c.Request().Context(),
		c.FormValue("username"), c.FormValue("password"))
	if err != nil {
		if errors.Is(err, common.ErrorUnauthorized) {
			return c.Render(http.StatusOK, "login.html", authPage{Error: "Invalid username or password.", Next: next})
		}
		s.logger.Error(c.Request().Context(), "authenticating user", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	token, err := s.users.IssueSession(user)
	if err != nil {
		s.logger.Error(c.Request().Context(), "issuing session", "error", err)
		return echo.NewHTTPError(http.StatusInternalServerError)
	}

	s.setSessionCookie(c, token)
	return c.Redirect(http.StatusSeeOther, next)
}

func (s *Server) logout(c echo.Context) error {
	s.clearSessionCookie(c)
	return c.Redirect(http.StatusSeeOther, "/")
}

// userErrorMessage maps expected, user-caused failures to the inline
// message shown on the page; unexpected errors return "".
func userErrorMessage(err error) string {
	switch {
	case errors.Is(err, common.ErrorEmptyTitle):
		return "Task title cannot be empty."
	case errors.Is(err, common.ErrorUnsupportedType):
		return "File type not allowed."
	case errors.Is(err, common.ErrorMissingFile):
		return "No file uploaded."
	case errors.Is(err, common.ErrorPasswordsDiffer):
		return "Passwords do not match."
	case errors.Is(err, common.ErrorAlreadyExists):
		return "Username already exists."
	case errors.Is(err, common.ErrorValidation):
		return "Username and password are required."
	default:
		return ""
	}
}

func contentTypeForName(name string) string {
	switch attachments.Ext(name) {
	case "png":
		return "image/png"
	case "jpg", "jpeg":
		return "image/jpeg"
	case "gif":
		return "image/gif"
	case "pdf":
		return "application/pdf"
	case "mp3":
		return "audio/mpeg"
	case "wav":
		return "audio/wav"
	case "webm":
		return "audio/webm"
	case "ogg":
		return "audio/ogg"
	default:
		return "application/octet-stream"
	}
}
