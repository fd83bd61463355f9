package githubtest

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/go-github/v62/github"
	"github.com/labstack/echo/v4"
)

const documentationURL = "https://docs.github.com/rest/collaborators"

func apiError(code int, message string) *echo.HTTPError {
	return echo.NewHTTPError(code, echo.Map{"message": message, "documentation_url": documentationURL})
}

var (
	errNotFound        = apiError(http.StatusNotFound, "Not Found")
	errRequiresAuth    = apiError(http.StatusUnauthorized, "Requires authentication")
	errBadCredentials  = apiError(http.StatusUnauthorized, "Bad credentials")
	errMustHaveAdmin   = apiError(http.StatusForbidden, "Must have admin rights to Repository.")
	errInvalidPerm     = apiError(http.StatusUnprocessableEntity, "Validation Failed")
	errOwnerCollabSelf = apiError(http.StatusUnprocessableEntity, "Repository owner cannot be a collaborator")
)

func (s *Server) newEcho() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = func(err error, ctx echo.Context) {
		if ctx.Response().Committed {
			return
		}

		he, ok := err.(*echo.HTTPError)
		if !ok {
			slog.Error("fake api error", "err", err, "method", ctx.Request().Method, "path", ctx.Request().URL.Path)
			he = apiError(http.StatusInternalServerError, err.Error())
		}

		message := he.Message
		if m, ok := message.(string); ok {
			message = echo.Map{"message": m}
		}

		if err := ctx.JSON(he.Code, message); err != nil {
			slog.Error("could not send error response", "error", err)
		}
	}

	e.Use(logger())
	e.Use(s.authMiddleware())

	e.PUT("/repos/:owner/:repo/collaborators/:username", s.addCollaborator)
	e.DELETE("/repos/:owner/:repo/collaborators/:username", s.removeCollaborator)
	e.GET("/repos/:owner/:repo/collaborators", s.listCollaborators)
	e.GET("/repos/:owner/:repo/collaborators/:username", s.isCollaborator)

	e.GET("/repos/:owner/:repo/invitations", s.listRepositoryInvitations)
	e.DELETE("/repos/:owner/:repo/invitations/:id", s.deleteRepositoryInvitation)
	e.PATCH("/repos/:owner/:repo/invitations/:id", s.updateRepositoryInvitation)

	e.GET("/user/repository_invitations", s.listUserInvitations)
	e.PATCH("/user/repository_invitations/:id", s.acceptInvitation)
	e.DELETE("/user/repository_invitations/:id", s.declineInvitation)

	return e
}

func logger() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			now := time.Now()
			err := next(ctx)
			slog.Debug("handled request", "method", ctx.Request().Method, "url", ctx.Request().URL, "status", ctx.Response().Status, "duration", time.Since(now))
			return err
		}
	}
}

// authMiddleware accepts basic auth and bearer tokens. Every endpoint requires an
// authenticated user.
func (s *Server) authMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(ctx echo.Context) error {
			req := ctx.Request()

			if username, password, ok := req.BasicAuth(); ok {
				s.mu.Lock()
				u, exists := s.users[username]
				s.mu.Unlock()
				if !exists || u.password != password {
					return errBadCredentials
				}
				ctx.Set("user", u.login)
				return next(ctx)
			}

			header := req.Header.Get("Authorization")
			if header == "" {
				return errRequiresAuth
			}

			fields := strings.Fields(header)
			if len(fields) != 2 || (!strings.EqualFold(fields[0], "bearer") && !strings.EqualFold(fields[0], "token")) {
				return errBadCredentials
			}

			s.mu.Lock()
			login, exists := s.tokens[fields[1]]
			s.mu.Unlock()
			if !exists {
				return errBadCredentials
			}
			ctx.Set("user", login)
			return next(ctx)
		}
	}
}

func currentUser(ctx echo.Context) string {
	login, _ := ctx.Get("user").(string)
	return login
}

func baseURL(ctx echo.Context) string {
	return ctx.Scheme() + "://" + ctx.Request().Host + "/"
}

func parseID(ctx echo.Context) (int64, error) {
	id, err := strconv.ParseInt(ctx.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, errNotFound
	}
	return id, nil
}

// the caller has to hold the lock
func (s *Server) repoVisibleTo(ctx echo.Context, login string) (*repository, error) {
	repo, ok := s.repos[ctx.Param("owner")+"/"+ctx.Param("repo")]
	if !ok {
		return nil, errNotFound
	}
	if repo.private && repo.owner != login {
		if _, isCollab := repo.collaborators[login]; !isCollab {
			return nil, errNotFound
		}
	}
	return repo, nil
}

// the caller has to hold the lock
func (s *Server) repoAdministeredBy(ctx echo.Context, login string) (*repository, error) {
	repo, err := s.repoVisibleTo(ctx, login)
	if err != nil {
		return nil, err
	}
	if repo.owner != login && repo.collaborators[login] != "admin" {
		return nil, errMustHaveAdmin
	}
	return repo, nil
}

func normalizeCollaboratorPermission(p string) (string, bool) {
	switch p {
	case "", "push", "write":
		return "write", true
	case "pull", "read":
		return "read", true
	case "triage", "maintain", "admin":
		return p, true
	}
	return "", false
}

func (s *Server) addCollaborator(ctx echo.Context) error {
	login := currentUser(ctx)

	var body struct {
		Permission string `json:"permission"`
	}
	if ctx.Request().ContentLength != 0 {
		if err := json.NewDecoder(ctx.Request().Body).Decode(&body); err != nil {
			return apiError(http.StatusBadRequest, "Problems parsing JSON")
		}
	}
	permission, ok := normalizeCollaboratorPermission(body.Permission)
	if !ok {
		return errInvalidPerm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoAdministeredBy(ctx, login)
	if err != nil {
		return err
	}
	invitee, ok := s.users[ctx.Param("username")]
	if !ok {
		return errNotFound
	}
	if invitee.login == repo.owner {
		return errOwnerCollabSelf
	}
	if _, isCollab := repo.collaborators[invitee.login]; isCollab {
		return ctx.NoContent(http.StatusNoContent)
	}

	for _, inv := range s.invitations {
		if inv.repo == repo.fullName() && inv.invitee == invitee.login {
			inv.permissions = permission
			return ctx.JSON(http.StatusCreated, s.toInvitation(baseURL(ctx), inv))
		}
	}

	inv := &invitation{
		id:          s.nextInvitationID,
		repo:        repo.fullName(),
		invitee:     invitee.login,
		inviter:     login,
		permissions: permission,
		createdAt:   s.now().UTC().Truncate(time.Second),
	}
	s.invitations[inv.id] = inv
	s.nextInvitationID++

	return ctx.JSON(http.StatusCreated, s.toInvitation(baseURL(ctx), inv))
}

func (s *Server) removeCollaborator(ctx echo.Context) error {
	login := currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoVisibleTo(ctx, login)
	if err != nil {
		return err
	}
	username := ctx.Param("username")
	// collaborators may remove themselves
	if repo.owner != login && repo.collaborators[login] != "admin" && username != login {
		return errMustHaveAdmin
	}

	delete(repo.collaborators, username)
	for id, inv := range s.invitations {
		if inv.repo == repo.fullName() && inv.invitee == username {
			delete(s.invitations, id)
		}
	}
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) listCollaborators(ctx echo.Context) error {
	login := currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoVisibleTo(ctx, login)
	if err != nil {
		return err
	}
	if _, isCollab := repo.collaborators[login]; !isCollab && repo.owner != login {
		return errMustHaveAdmin
	}

	logins := []string{repo.owner}
	for collaborator := range repo.collaborators {
		logins = append(logins, collaborator)
	}
	sort.Strings(logins)

	base := baseURL(ctx)
	users := make([]*github.User, 0, len(logins))
	for _, l := range logins {
		users = append(users, s.toUser(base, s.users[l]))
	}
	return paginate(ctx, users)
}

func (s *Server) isCollaborator(ctx echo.Context) error {
	login := currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoVisibleTo(ctx, login)
	if err != nil {
		return err
	}
	username := ctx.Param("username")
	if _, isCollab := repo.collaborators[username]; isCollab || username == repo.owner {
		return ctx.NoContent(http.StatusNoContent)
	}
	return errNotFound
}

func (s *Server) sortedInvitations(filter func(inv *invitation) bool) []*invitation {
	res := make([]*invitation, 0)
	for _, inv := range s.invitations {
		if filter(inv) {
			res = append(res, inv)
		}
	}
	sort.Slice(res, func(i, j int) bool { return res[i].id < res[j].id })
	return res
}

func (s *Server) listRepositoryInvitations(ctx echo.Context) error {
	login := currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoAdministeredBy(ctx, login)
	if err != nil {
		return err
	}

	base := baseURL(ctx)
	invitations := s.sortedInvitations(func(inv *invitation) bool { return inv.repo == repo.fullName() })
	res := make([]*github.RepositoryInvitation, 0, len(invitations))
	for _, inv := range invitations {
		res = append(res, s.toInvitation(base, inv))
	}
	return paginate(ctx, res)
}

func (s *Server) deleteRepositoryInvitation(ctx echo.Context) error {
	login := currentUser(ctx)
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoAdministeredBy(ctx, login)
	if err != nil {
		return err
	}
	inv, ok := s.invitations[id]
	if !ok || inv.repo != repo.fullName() {
		return errNotFound
	}
	delete(s.invitations, id)
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) updateRepositoryInvitation(ctx echo.Context) error {
	login := currentUser(ctx)
	id, err := parseID(ctx)
	if err != nil {
		return err
	}

	var body struct {
		Permissions string `json:"permissions"`
	}
	if err := json.NewDecoder(ctx.Request().Body).Decode(&body); err != nil {
		return apiError(http.StatusBadRequest, "Problems parsing JSON")
	}
	switch body.Permissions {
	case "read", "triage", "write", "maintain", "admin":
	default:
		return errInvalidPerm
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	repo, err := s.repoAdministeredBy(ctx, login)
	if err != nil {
		return err
	}
	inv, ok := s.invitations[id]
	if !ok || inv.repo != repo.fullName() {
		return errNotFound
	}
	inv.permissions = body.Permissions
	return ctx.JSON(http.StatusOK, s.toInvitation(baseURL(ctx), inv))
}

func (s *Server) listUserInvitations(ctx echo.Context) error {
	login := currentUser(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()

	base := baseURL(ctx)
	invitations := s.sortedInvitations(func(inv *invitation) bool { return inv.invitee == login })
	res := make([]*github.RepositoryInvitation, 0, len(invitations))
	for _, inv := range invitations {
		res = append(res, s.toInvitation(base, inv))
	}
	return paginate(ctx, res)
}

// the caller has to hold the lock
func (s *Server) ownInvitation(ctx echo.Context) (*invitation, error) {
	id, err := parseID(ctx)
	if err != nil {
		return nil, err
	}
	inv, ok := s.invitations[id]
	if !ok || inv.invitee != currentUser(ctx) {
		return nil, errNotFound
	}
	return inv, nil
}

func (s *Server) acceptInvitation(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.ownInvitation(ctx)
	if err != nil {
		return err
	}
	if repo, ok := s.repos[inv.repo]; ok {
		repo.collaborators[inv.invitee] = inv.permissions
	}
	delete(s.invitations, inv.id)
	return ctx.NoContent(http.StatusNoContent)
}

func (s *Server) declineInvitation(ctx echo.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	inv, err := s.ownInvitation(ctx)
	if err != nil {
		return err
	}
	delete(s.invitations, inv.id)
	return ctx.NoContent(http.StatusNoContent)
}

// paginate writes one page of items and sets the Link header the way the api does.
func paginate[T any](ctx echo.Context, items []T) error {
	page, _ := strconv.Atoi(ctx.QueryParam("page"))
	if page < 1 {
		page = 1
	}
	perPage, _ := strconv.Atoi(ctx.QueryParam("per_page"))
	if perPage < 1 {
		perPage = 30
	}
	if perPage > 100 {
		perPage = 100
	}

	start := (page - 1) * perPage
	if start > len(items) {
		start = len(items)
	}
	end := start + perPage
	if end > len(items) {
		end = len(items)
	}

	lastPage := (len(items) + perPage - 1) / perPage
	if lastPage < 1 {
		lastPage = 1
	}

	links := make([]string, 0, 2)
	pageURL := func(p int) string {
		u := *ctx.Request().URL
		q := u.Query()
		q.Set("page", strconv.Itoa(p))
		q.Set("per_page", strconv.Itoa(perPage))
		u.RawQuery = q.Encode()
		return strings.TrimSuffix(baseURL(ctx), "/") + u.RequestURI()
	}
	if page < lastPage {
		links = append(links, fmt.Sprintf(`<%s>; rel="next"`, pageURL(page+1)))
		links = append(links, fmt.Sprintf(`<%s>; rel="last"`, pageURL(lastPage)))
	}
	if len(links) > 0 {
		ctx.Response().Header().Set("Link", strings.Join(links, ", "))
	}

	return ctx.JSON(http.StatusOK, items[start:end])
}
