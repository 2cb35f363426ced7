package api

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"strconv"
	"strings"
	"testing"

	"yelpcamp/internal/domain"
	"yelpcamp/internal/geocode"
	"yelpcamp/internal/middleware"
	"yelpcamp/internal/session"
	"yelpcamp/internal/storage"
	"yelpcamp/internal/store"
	"yelpcamp/internal/utils"

	"github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	logrus.SetLevel(logrus.FatalLevel)
	os.Exit(m.Run())
}

// stubGeocoder resolves every location to a fixed point
type stubGeocoder struct{}

func (stubGeocoder) Geocode(ctx context.Context, location string) (*geocode.Point, error) {
	return &geocode.Point{Longitude: -120.46, Latitude: 42.19}, nil
}

// testApp wires the full handler chain against sqlite and miniredis
type testApp struct {
	handler  http.Handler
	db       *gorm.DB
	rdb      *redis.Client
	mr       *miniredis.Miniredis
	sessions *session.Store
}

// jar carries one browser's cookies between requests
type jar struct {
	cookies map[string]*http.Cookie
}

func newJar() *jar {
	return &jar{cookies: map[string]*http.Cookie{}}
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	b := make([]byte, 8)
	_, err := rand.Read(b)
	require.NoError(t, err)
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", hex.EncodeToString(b))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&domain.User{},
		&domain.Campground{},
		&domain.Review{},
		&domain.Image{},
		&domain.Geometry{},
	))

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	sessions := session.NewStore(rdb)
	cache := session.NewCache(rdb)
	files, err := storage.NewDiskStore(t.TempDir())
	require.NoError(t, err)

	r := gin.New()
	r.LoadHTMLGlob("../../templates/*.html")
	r.Use(middleware.LoadSession(sessions, "test-secret"))

	r.GET("/", HomeHandler())
	camps := r.Group("/campgrounds")
	camps.GET("", ListCampgroundsHandler(db, cache))
	camps.GET("/new", middleware.RequireLogin(), NewCampgroundFormHandler())
	camps.POST("",
		middleware.RequireLogin(),
		middleware.ValidateCampground(),
		CreateCampgroundHandler(db, cache, stubGeocoder{}, files))
	camps.GET("/:id", ShowCampgroundHandler(db))
	camps.GET("/:id/edit",
		middleware.RequireLogin(),
		middleware.CampgroundAuthor(db),
		EditCampgroundFormHandler(db))
	camps.PUT("/:id",
		middleware.RequireLogin(),
		middleware.CampgroundAuthor(db),
		middleware.ValidateCampground(),
		UpdateCampgroundHandler(db, cache, stubGeocoder{}, files))
	camps.DELETE("/:id",
		middleware.RequireLogin(),
		middleware.CampgroundAuthor(db),
		DeleteCampgroundHandler(db, cache, files))
	camps.POST("/:id/reviews",
		middleware.RequireLogin(),
		middleware.ValidateReview(),
		CreateReviewHandler(db))
	camps.DELETE("/:id/reviews/:reviewId",
		middleware.RequireLogin(),
		middleware.ReviewAuthor(db),
		DeleteReviewHandler(db))
	r.GET("/register", RegisterFormHandler())
	r.POST("/register", RegisterHandler(db, sessions, "test-secret"))
	r.GET("/login", LoginFormHandler())
	r.POST("/login", LoginHandler(db, sessions, "test-secret"))
	r.GET("/logout", LogoutHandler(sessions, "test-secret"))

	return &testApp{
		handler:  middleware.MethodOverride(r),
		db:       db,
		rdb:      rdb,
		mr:       mr,
		sessions: sessions,
	}
}

// sessionID extracts the server-side session ID out of the jar's cookie token
func (a *testApp) sessionID(t *testing.T, j *jar) string {
	t.Helper()
	ck, ok := j.cookies[middleware.CookieName]
	require.True(t, ok)
	claims, err := utils.ParseSessionToken(ck.Value, "test-secret")
	require.NoError(t, err)
	return claims.SessionID
}

// do performs one request with the jar's cookies and stores any set-cookies back
func (a *testApp) do(t *testing.T, j *jar, method, path string, form url.Values) *httptest.ResponseRecorder {
	t.Helper()
	var body io.Reader
	if form != nil {
		body = strings.NewReader(form.Encode())
	}
	req := httptest.NewRequest(method, path, body)
	if form != nil {
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	}
	for _, ck := range j.cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	a.handler.ServeHTTP(w, req)
	for _, ck := range w.Result().Cookies() {
		j.cookies[ck.Name] = ck
	}
	return w
}

// register creates and logs in a user through the HTTP surface
func (a *testApp) register(t *testing.T, username string) (*jar, uint) {
	t.Helper()
	j := newJar()
	w := a.do(t, j, http.MethodPost, "/register", url.Values{
		"username":  {username},
		"email":     {username + "@example.com"},
		"password1": {"campersrule"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/campgrounds", w.Header().Get("Location"))
	user, err := store.GetUserByUsername(a.db, username)
	require.NoError(t, err)
	return j, user.ID
}

func campgroundForm() url.Values {
	return url.Values{
		"title":       {"Lakeview"},
		"location":    {"Lakeview, CA"},
		"image":       {"https://example.com/lake.jpg"},
		"price":       {"25"},
		"description": {"nice"},
	}
}

// createCampground posts a valid campground and returns the new id
func (a *testApp) createCampground(t *testing.T, j *jar) uint {
	t.Helper()
	w := a.do(t, j, http.MethodPost, "/campgrounds", campgroundForm())
	require.Equal(t, http.StatusFound, w.Code)
	loc := w.Header().Get("Location")
	require.True(t, strings.HasPrefix(loc, "/campgrounds/"))
	id, err := strconv.ParseUint(strings.TrimPrefix(loc, "/campgrounds/"), 10, 64)
	require.NoError(t, err)
	return uint(id)
}

func (a *testApp) countRows(t *testing.T, model any) int64 {
	t.Helper()
	var n int64
	require.NoError(t, a.db.Model(model).Count(&n).Error)
	return n
}

func TestCreateCampgroundInsertsRowAndRedirects(t *testing.T) {
	app := newTestApp(t)
	j, userID := app.register(t, "alice")

	campID := app.createCampground(t, j)

	camp, err := store.GetCampground(app.db, campID)
	require.NoError(t, err)
	require.Equal(t, "Lakeview", camp.Title)
	require.Equal(t, float64(25), camp.Price)
	require.Equal(t, userID, camp.AuthorID)
	// The stubbed geocoder's first hit landed as the geometry
	require.NotNil(t, camp.Geometry)
	require.InDelta(t, 42.19, camp.Geometry.Latitude, 0.001)
}

func TestCreateCampgroundInvalidPriceIsRejected(t *testing.T) {
	app := newTestApp(t)
	j, _ := app.register(t, "alice")

	for _, price := range []string{"-5", "abc"} {
		form := campgroundForm()
		form.Set("price", price)
		w := app.do(t, j, http.MethodPost, "/campgrounds", form)
		require.Equal(t, http.StatusBadRequest, w.Code, "price %q", price)
	}
	// No store mutation may have happened
	require.Zero(t, app.countRows(t, &domain.Campground{}))
}

func TestCreateCampgroundRequiresLogin(t *testing.T) {
	app := newTestApp(t)
	j := newJar()
	w := app.do(t, j, http.MethodPost, "/campgrounds", campgroundForm())
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
	require.Zero(t, app.countRows(t, &domain.Campground{}))
}

func TestLoginReturnsToRequestedURL(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice") // Existing account, fresh browser below

	j := newJar()
	w := app.do(t, j, http.MethodGet, "/campgrounds/new", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))

	w = app.do(t, j, http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"campersrule"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/campgrounds/new", w.Header().Get("Location"))
}

func TestLoginRejectsBadPassword(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	j := newJar()
	w := app.do(t, j, http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"wrongwrong"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestDuplicateRegistrationCreatesNoRow(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	j := newJar()
	w := app.do(t, j, http.MethodPost, "/register", url.Values{
		"username":  {"alice"},
		"email":     {"different@example.com"},
		"password1": {"campersrule"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/register", w.Header().Get("Location"))
	require.EqualValues(t, 1, app.countRows(t, &domain.User{}))

	// Same again with a duplicate email instead
	w = app.do(t, j, http.MethodPost, "/register", url.Values{
		"username":  {"someoneelse"},
		"email":     {"alice@example.com"},
		"password1": {"campersrule"},
	})
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/register", w.Header().Get("Location"))
	require.EqualValues(t, 1, app.countRows(t, &domain.User{}))
}

func TestDeleteByNonAuthorLeavesRow(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)

	bob, _ := app.register(t, "bob")
	w := app.do(t, bob, http.MethodDelete, fmt.Sprintf("/campgrounds/%d", campID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, fmt.Sprintf("/campgrounds/%d", campID), w.Header().Get("Location"))

	// The row must remain unchanged
	camp, err := store.GetCampground(app.db, campID)
	require.NoError(t, err)
	require.Equal(t, "Lakeview", camp.Title)
}

func TestUpdateByNonAuthorLeavesRow(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)

	bob, _ := app.register(t, "bob")
	form := campgroundForm()
	form.Set("title", "hijacked")
	w := app.do(t, bob, http.MethodPut, fmt.Sprintf("/campgrounds/%d", campID), form)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, fmt.Sprintf("/campgrounds/%d", campID), w.Header().Get("Location"))

	camp, err := store.GetCampground(app.db, campID)
	require.NoError(t, err)
	require.Equal(t, "Lakeview", camp.Title)
}

func TestDeleteCascadesThroughMethodOverride(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)

	// Leave a review so the cascade has something to sweep
	w := app.do(t, alice, http.MethodPost, fmt.Sprintf("/campgrounds/%d/reviews", campID), url.Values{
		"rating": {"5"},
		"body":   {"great"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	// HTML forms delete through POST + _method override
	w = app.do(t, alice, http.MethodPost, fmt.Sprintf("/campgrounds/%d?_method=DELETE", campID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/campgrounds", w.Header().Get("Location"))

	require.Zero(t, app.countRows(t, &domain.Campground{}))
	require.Zero(t, app.countRows(t, &domain.Review{}))
	require.Zero(t, app.countRows(t, &domain.Image{}))
	require.Zero(t, app.countRows(t, &domain.Geometry{}))
}

func TestCreateReviewInvalidRatingIsRejected(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)

	w := app.do(t, alice, http.MethodPost, fmt.Sprintf("/campgrounds/%d/reviews", campID), url.Values{
		"rating": {"-1"},
		"body":   {"bad"},
	})
	require.Equal(t, http.StatusBadRequest, w.Code)
	require.Zero(t, app.countRows(t, &domain.Review{}))
}

func TestReviewDeleteOnlyByItsAuthor(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)

	bob, _ := app.register(t, "bob")
	w := app.do(t, bob, http.MethodPost, fmt.Sprintf("/campgrounds/%d/reviews", campID), url.Values{
		"rating": {"2"},
		"body":   {"meh"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	camp, err := store.GetCampground(app.db, campID)
	require.NoError(t, err)
	require.Len(t, camp.Reviews, 1)
	reviewID := camp.Reviews[0].ID

	// The campground's author does not own the review
	w = app.do(t, alice, http.MethodDelete, fmt.Sprintf("/campgrounds/%d/reviews/%d", campID, reviewID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.EqualValues(t, 1, app.countRows(t, &domain.Review{}))

	// Its own author can delete it
	w = app.do(t, bob, http.MethodDelete, fmt.Sprintf("/campgrounds/%d/reviews/%d", campID, reviewID), nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Zero(t, app.countRows(t, &domain.Review{}))
}

func TestShowMissingCampgroundRedirectsWithFlash(t *testing.T) {
	app := newTestApp(t)
	j := newJar()
	w := app.do(t, j, http.MethodGet, "/campgrounds/999", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/campgrounds", w.Header().Get("Location"))

	// The flash lands on the next rendered page
	w = app.do(t, j, http.MethodGet, "/campgrounds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Cannot find that campground!")
}

func TestIndexIsCachedAndInvalidatedOnMutation(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")

	w := app.do(t, alice, http.MethodGet, "/campgrounds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.True(t, app.mr.Exists(indexCacheKey))

	// A mutation drops the cached listing
	app.createCampground(t, alice)
	require.False(t, app.mr.Exists(indexCacheKey))

	// The fresh listing includes the new row
	w = app.do(t, alice, http.MethodGet, "/campgrounds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Lakeview")
}

func TestShowPageRendersJoinedData(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)
	app.do(t, alice, http.MethodPost, fmt.Sprintf("/campgrounds/%d/reviews", campID), url.Values{
		"rating": {"5"},
		"body":   {"great"},
	})

	w := app.do(t, alice, http.MethodGet, fmt.Sprintf("/campgrounds/%d", campID), nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := w.Body.String()
	require.Contains(t, body, "Lakeview")
	require.Contains(t, body, "alice")   // Author joined
	require.Contains(t, body, "great")   // Review joined
	require.Contains(t, body, "42.19")   // Geometry joined
}

func TestLogoutDropsThePrincipal(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")

	w := app.do(t, alice, http.MethodGet, "/logout", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/campgrounds", w.Header().Get("Location"))

	// The same browser is anonymous again
	w = app.do(t, alice, http.MethodGet, "/campgrounds/new", nil)
	require.Equal(t, http.StatusFound, w.Code)
	require.Equal(t, "/login", w.Header().Get("Location"))
}

func TestLogoutEndsTheServerSideSession(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	oldID := app.sessionID(t, alice)

	w := app.do(t, alice, http.MethodGet, "/logout", nil)
	require.Equal(t, http.StatusFound, w.Code)

	// The logged-out token must no longer resolve to any session
	got, err := app.sessions.Get(context.Background(), oldID)
	require.NoError(t, err)
	require.Nil(t, got)

	// The browser was handed a fresh session, and the goodbye flash rides on it
	require.NotEqual(t, oldID, app.sessionID(t, alice))
	w = app.do(t, alice, http.MethodGet, "/campgrounds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Goodbye!")
}

func TestLoginRotatesTheSessionID(t *testing.T) {
	app := newTestApp(t)
	app.register(t, "alice")

	j := newJar()
	// Any page seeds the browser with an anonymous session
	w := app.do(t, j, http.MethodGet, "/campgrounds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	preAuthID := app.sessionID(t, j)

	w = app.do(t, j, http.MethodPost, "/login", url.Values{
		"username": {"alice"},
		"password": {"campersrule"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	// The pre-auth token must not name the authenticated session
	require.NotEqual(t, preAuthID, app.sessionID(t, j))
	got, err := app.sessions.Get(context.Background(), preAuthID)
	require.NoError(t, err)
	require.Nil(t, got)
}

func TestUpdatePersistsNewCoverImage(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	campID := app.createCampground(t, alice)

	form := campgroundForm()
	form.Set("image", "https://example.com/sunset.jpg")
	w := app.do(t, alice, http.MethodPut, fmt.Sprintf("/campgrounds/%d", campID), form)
	require.Equal(t, http.StatusFound, w.Code)

	camp, err := store.GetCampground(app.db, campID)
	require.NoError(t, err)
	require.Equal(t, "https://example.com/sunset.jpg", camp.Image)
}

func TestReviewDeleteUnderWrongCampgroundIs404(t *testing.T) {
	app := newTestApp(t)
	alice, _ := app.register(t, "alice")
	firstID := app.createCampground(t, alice)
	secondID := app.createCampground(t, alice)

	w := app.do(t, alice, http.MethodPost, fmt.Sprintf("/campgrounds/%d/reviews", firstID), url.Values{
		"rating": {"4"},
		"body":   {"good"},
	})
	require.Equal(t, http.StatusFound, w.Code)

	camp, err := store.GetCampground(app.db, firstID)
	require.NoError(t, err)
	require.Len(t, camp.Reviews, 1)
	reviewID := camp.Reviews[0].ID

	// The review hangs off the first campground; addressing it through the
	// second must not delete it
	w = app.do(t, alice, http.MethodDelete, fmt.Sprintf("/campgrounds/%d/reviews/%d", secondID, reviewID), nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	require.EqualValues(t, 1, app.countRows(t, &domain.Review{}))
}
