package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/retailmatch/backend/internal/domain"
	"github.com/retailmatch/backend/internal/metrics"
)

// MockCatalogRepository is a mock implementation of domain.CatalogRepository
type MockCatalogRepository struct {
	data      map[string]*domain.Catalog
	getError  error
	saveError error
	savedTTL  time.Duration
}

func NewMockCatalogRepository() *MockCatalogRepository {
	return &MockCatalogRepository{
		data: make(map[string]*domain.Catalog),
	}
}

func (m *MockCatalogRepository) Get(ctx context.Context, id string) (*domain.Catalog, error) {
	if m.getError != nil {
		return nil, m.getError
	}
	if catalog, ok := m.data[id]; ok {
		return catalog, nil
	}
	return nil, domain.ErrCacheMiss
}

func (m *MockCatalogRepository) Save(ctx context.Context, catalog *domain.Catalog, ttl time.Duration) error {
	if m.saveError != nil {
		return m.saveError
	}
	m.savedTTL = ttl
	m.data[catalog.ID] = catalog
	return nil
}

func (m *MockCatalogRepository) Delete(ctx context.Context, id string) error {
	delete(m.data, id)
	return nil
}

// MockPageFetcher is a mock implementation of domain.PageFetcher
type MockPageFetcher struct {
	page    *domain.Page
	err     error
	calls   int
	lastURL string
}

func (m *MockPageFetcher) Fetch(ctx context.Context, rawURL string) (*domain.Page, error) {
	m.calls++
	m.lastURL = rawURL
	if m.err != nil {
		return nil, m.err
	}
	return m.page, nil
}

func newTestService(repo *MockCatalogRepository, fetcher *MockPageFetcher) *BrandMatchService {
	return NewBrandMatchService(repo, fetcher, BrandMatchServiceConfig{
		CatalogTTL:      30 * time.Minute,
		FilterStopWords: true,
		StopWords:       DefaultStopWords,
	})
}

func uploadCatalog(t *testing.T, svc *BrandMatchService, csv string) *domain.Catalog {
	t.Helper()
	catalog, err := svc.UploadCatalog(context.Background(), strings.NewReader(csv), "upload.csv")
	require.NoError(t, err)
	return catalog
}

func TestBrandMatchService_MatchURL(t *testing.T) {
	repo := NewMockCatalogRepository()
	fetcher := &MockPageFetcher{
		page: &domain.Page{
			URL:        "https://shop.example.com/",
			StatusCode: 200,
			Texts:      []string{"Home", "Acme Co.", "ACME CO", "Shop", "Globex!", "©"},
		},
	}
	svc := newTestService(repo, fetcher)
	catalog := uploadCatalog(t, svc,
		"Account Name,Token,C1 Brand Category,C2 Brand Subcategory\n"+
			"Acme & Co.,tok-1,Home,Candles\n"+
			"Home,tok-2,Decor,Rugs\n"+
			"Initech,tok-3,Office,Paper\n")

	report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{
		URL:       "shop.example.com",
		CatalogID: catalog.ID,
	})

	require.NoError(t, err)
	assert.Equal(t, "shop.example.com", fetcher.lastURL)
	assert.Equal(t, "https://shop.example.com/", report.URL)
	assert.Equal(t, catalog.ID, report.CatalogID)
	assert.Equal(t, 3, report.CatalogSize)
	assert.Equal(t, 6, report.TextElements)
	// "acme co", "home", "shop", "globex"
	assert.Equal(t, 4, report.ExtractedTokens)
	assert.Equal(t, 2, report.FilteredTokens)
	assert.Equal(t, []string{"acme co"}, report.MatchedKeys)
	require.Len(t, report.Matches, 1)
	assert.Equal(t, "tok-1", report.Matches[0].Token)
	assert.True(t, report.HasMatches())
}

func TestBrandMatchService_StopWordFilterDisabled(t *testing.T) {
	repo := NewMockCatalogRepository()
	fetcher := &MockPageFetcher{page: &domain.Page{URL: "https://x.test/", Texts: []string{"Home", "Acme Co"}}}
	svc := NewBrandMatchService(repo, fetcher, BrandMatchServiceConfig{FilterStopWords: false})
	catalog := uploadCatalog(t, svc, "Account Name\nHome\nAcme Co\n")

	report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://x.test/", CatalogID: catalog.ID})

	require.NoError(t, err)
	assert.Equal(t, []string{"acme co", "home"}, report.MatchedKeys)
}

func TestBrandMatchService_FetchErrorStopsPipeline(t *testing.T) {
	repo := NewMockCatalogRepository()
	fetchErr := &domain.FetchError{URL: "https://slow.test/", Err: context.DeadlineExceeded}
	fetcher := &MockPageFetcher{err: fetchErr}
	svc := newTestService(repo, fetcher)
	catalog := uploadCatalog(t, svc, "Account Name\nAcme Co\n")

	report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://slow.test/", CatalogID: catalog.ID})

	assert.Nil(t, report)
	var target *domain.FetchError
	require.True(t, errors.As(err, &target))
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Equal(t, 1, fetcher.calls)
}

func TestBrandMatchService_EmptyPage(t *testing.T) {
	repo := NewMockCatalogRepository()
	fetcher := &MockPageFetcher{page: &domain.Page{URL: "https://empty.test/"}}
	svc := newTestService(repo, fetcher)
	catalog := uploadCatalog(t, svc, "Account Name\nFoo\n")

	report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://empty.test/", CatalogID: catalog.ID})

	require.NoError(t, err)
	assert.Empty(t, report.Matches)
	assert.False(t, report.HasMatches())
	assert.Zero(t, report.TextElements)
}

func TestBrandMatchService_ResolveCatalog(t *testing.T) {
	t.Run("no default and no upload", func(t *testing.T) {
		fetcher := &MockPageFetcher{page: &domain.Page{}}
		svc := newTestService(NewMockCatalogRepository(), fetcher)

		_, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://x.test/"})

		assert.ErrorIs(t, err, domain.ErrCatalogSourceMissing)
		assert.Zero(t, fetcher.calls)
	})

	t.Run("unknown catalog id", func(t *testing.T) {
		fetcher := &MockPageFetcher{page: &domain.Page{}}
		svc := newTestService(NewMockCatalogRepository(), fetcher)

		_, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://x.test/", CatalogID: "gone"})

		assert.ErrorIs(t, err, domain.ErrCatalogNotFound)
		assert.Zero(t, fetcher.calls)
	})

	t.Run("repository failure is passed through", func(t *testing.T) {
		repo := NewMockCatalogRepository()
		repo.getError = errors.New("store down")
		svc := newTestService(repo, &MockPageFetcher{page: &domain.Page{}})

		_, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://x.test/", CatalogID: "id"})

		assert.EqualError(t, err, "store down")
	})

	t.Run("falls back to default catalog", func(t *testing.T) {
		path := writeTempCatalog(t, "Account Name\nGlobex\n")
		fetcher := &MockPageFetcher{page: &domain.Page{URL: "https://x.test/", Texts: []string{"Globex"}}}
		svc := newTestService(NewMockCatalogRepository(), fetcher)

		_, err := svc.LoadDefaultCatalog(path)
		require.NoError(t, err)

		report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://x.test/"})

		require.NoError(t, err)
		assert.Empty(t, report.CatalogID)
		assert.Equal(t, []string{"globex"}, report.MatchedKeys)
	})
}

func TestBrandMatchService_InvalidRequest(t *testing.T) {
	svc := newTestService(NewMockCatalogRepository(), &MockPageFetcher{})

	for _, req := range []*domain.MatchRequest{nil, {URL: ""}, {URL: "   "}} {
		_, err := svc.MatchURL(context.Background(), req)
		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	}
}

func TestBrandMatchService_UploadCatalog(t *testing.T) {
	t.Run("stores catalog with ttl", func(t *testing.T) {
		repo := NewMockCatalogRepository()
		svc := newTestService(repo, &MockPageFetcher{})

		catalog := uploadCatalog(t, svc, "Account Name\nAcme\nGlobex\n")

		assert.NotEmpty(t, catalog.ID)
		assert.Equal(t, 2, catalog.Len())
		assert.Equal(t, 30*time.Minute, repo.savedTTL)
		assert.Same(t, catalog, repo.data[catalog.ID])
	})

	t.Run("schema error stores nothing", func(t *testing.T) {
		repo := NewMockCatalogRepository()
		svc := newTestService(repo, &MockPageFetcher{})

		catalog, err := svc.UploadCatalog(context.Background(), strings.NewReader("Brand\nAcme\n"), "bad.csv")

		assert.Nil(t, catalog)
		assert.ErrorIs(t, err, domain.ErrCatalogSchema)
		assert.Empty(t, repo.data)
	})

	t.Run("save failure", func(t *testing.T) {
		repo := NewMockCatalogRepository()
		repo.saveError = errors.New("full")
		svc := newTestService(repo, &MockPageFetcher{})

		_, err := svc.UploadCatalog(context.Background(), strings.NewReader("Account Name\nAcme\n"), "a.csv")

		assert.ErrorContains(t, err, "store catalog")
	})

	t.Run("nil reader", func(t *testing.T) {
		svc := newTestService(NewMockCatalogRepository(), &MockPageFetcher{})

		_, err := svc.UploadCatalog(context.Background(), nil, "a.csv")

		assert.ErrorIs(t, err, domain.ErrInvalidRequest)
	})
}

func TestBrandMatchService_LoadDefaultCatalog(t *testing.T) {
	svc := newTestService(NewMockCatalogRepository(), &MockPageFetcher{})
	assert.Nil(t, svc.DefaultCatalog())

	path := writeTempCatalog(t, "Account Name\nAcme\n")
	_, err := svc.LoadDefaultCatalog(path)
	require.NoError(t, err)
	require.NotNil(t, svc.DefaultCatalog())

	// a failed reload keeps the previous default
	_, err = svc.LoadDefaultCatalog(path + ".missing")
	assert.ErrorIs(t, err, domain.ErrCatalogSourceMissing)
	assert.Equal(t, 1, svc.DefaultCatalog().Len())
}

func TestBrandMatchService_Tokenize(t *testing.T) {
	svc := newTestService(NewMockCatalogRepository(), &MockPageFetcher{})

	tokens := svc.Tokenize([]string{"Acme Co.", "acme   co", "---", "", "Globex"})

	assert.Equal(t, []string{"acme co", "globex"}, tokens.Sorted())
}

func textElementsObserved(t *testing.T) (count uint64, sum float64) {
	t.Helper()
	var m dto.Metric
	require.NoError(t, metrics.PageTextElements.Write(&m))
	return m.GetHistogram().GetSampleCount(), m.GetHistogram().GetSampleSum()
}

func TestBrandMatchService_RecordsRawTextElements(t *testing.T) {
	fetcher := &MockPageFetcher{page: &domain.Page{
		URL:   "https://x.test/",
		Texts: []string{"Acme Co", "ACME CO.", "acme   co", "***"},
	}}
	svc := newTestService(NewMockCatalogRepository(), fetcher)
	catalog := uploadCatalog(t, svc, "Account Name\nAcme Co\n")

	countBefore, sumBefore := textElementsObserved(t)

	report, err := svc.MatchURL(context.Background(), &domain.MatchRequest{URL: "https://x.test/", CatalogID: catalog.ID})
	require.NoError(t, err)

	countAfter, sumAfter := textElementsObserved(t)
	assert.Equal(t, countBefore+1, countAfter)
	assert.Equal(t, float64(report.TextElements), sumAfter-sumBefore)
	assert.Equal(t, 4, report.TextElements)
	assert.Equal(t, 1, report.ExtractedTokens)
}
