package wizard

import (
	"context"
	"sync"
	"testing"

	"Backend-NetZero/src/models"
	"Backend-NetZero/src/portal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeSubmissionGateway records calls and lets tests script failures.
// The gate/entered channel pairs let a test hold a call in flight and
// interleave controller actions before releasing it.
type fakeSubmissionGateway struct {
	mu sync.Mutex

	submission *models.Submission
	fetchErr   error
	uploadErr  error
	updateErr  error
	submitErr  error

	updateGate    chan struct{}
	updateEntered chan struct{}
	uploadGate    chan struct{}
	uploadEntered chan struct{}

	uploadCalls int
	updates     []recordedUpdate
	submitted   bool
}

type recordedUpdate struct {
	category string
	section  string
	update   gateway.SectionUpdate
}

func (f *fakeSubmissionGateway) FetchSubmission(ctx context.Context, s gateway.Session) (*models.Submission, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fetchErr != nil {
		return nil, f.fetchErr
	}
	return f.submission, nil
}

func (f *fakeSubmissionGateway) UploadCertificate(ctx context.Context, s gateway.Session, category, sectionKey string, file gateway.LocalFile) (string, error) {
	f.mu.Lock()
	gate := f.uploadGate
	f.mu.Unlock()
	if gate != nil {
		f.uploadEntered <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploadCalls++
	if f.uploadErr != nil {
		return "", f.uploadErr
	}
	return "certificates/s1/" + category + "/" + sectionKey + ".pdf", nil
}

func (f *fakeSubmissionGateway) UpdateSection(ctx context.Context, s gateway.Session, category, sectionKey string, update gateway.SectionUpdate) error {
	f.mu.Lock()
	gate := f.updateGate
	f.mu.Unlock()
	if gate != nil {
		f.updateEntered <- struct{}{}
		<-gate
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if f.updateErr != nil {
		return f.updateErr
	}
	f.updates = append(f.updates, recordedUpdate{category, sectionKey, update})
	return nil
}

func (f *fakeSubmissionGateway) Submit(ctx context.Context, s gateway.Session) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.submitErr != nil {
		return f.submitErr
	}
	f.submitted = true
	return nil
}

func (f *fakeSubmissionGateway) ListSubmissions(ctx context.Context, s gateway.Session) ([]models.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionGateway) RateSection(ctx context.Context, s gateway.Session, submissionID, category, sectionKey string, points float64, remarks string) (*models.Submission, error) {
	return nil, nil
}

func (f *fakeSubmissionGateway) SetStatus(ctx context.Context, s gateway.Session, submissionID, status string) error {
	return nil
}

func newEnvController(t *testing.T, gw gateway.SubmissionGateway) *Controller {
	t.Helper()
	c, err := New(gw, gateway.Session{Token: "tok", UserID: "s1", Role: models.RoleSupplier}, models.CategoryEnvironment)
	require.NoError(t, err)
	return c
}

func TestNewController(t *testing.T) {
	t.Run("UnknownCategoryRejected", func(t *testing.T) {
		_, err := New(&fakeSubmissionGateway{}, gateway.Session{}, "finance")
		assert.Error(t, err)
	})

	t.Run("StartsAtFirstSection", func(t *testing.T) {
		c := newEnvController(t, &fakeSubmissionGateway{})
		assert.Equal(t, 0, c.CurrentIndex())
		assert.Equal(t, "renewableEnergy", c.CurrentKey())
		assert.Equal(t, 5, c.SectionCount())
	})
}

func TestLoadExisting(t *testing.T) {
	t.Run("NotFoundIsEmptyState", func(t *testing.T) {
		gw := &fakeSubmissionGateway{fetchErr: &gateway.Error{Kind: gateway.KindNotFound, Op: "fetch submission"}}
		c := newEnvController(t, gw)

		require.NoError(t, c.LoadExisting(context.Background()))

		st, ok := c.State("renewableEnergy")
		require.True(t, ok)
		assert.Empty(t, st.Value)
		assert.False(t, st.Dirty)
		assert.Equal(t, models.StatusDraft, c.Status())
	})

	t.Run("OverlaysSavedSections", func(t *testing.T) {
		gw := &fakeSubmissionGateway{submission: &models.Submission{
			Status: models.StatusRejected,
			Environment: map[string]models.Section{
				"renewableEnergy": {Value: map[string]string{"value": "30%"}, Points: 0.6, Remarks: "ok"},
				"emissionControl": {Value: map[string]string{"value": "ETP"}, Certificate: "certificates/s1/environment/emissionControl.pdf"},
			},
		}}
		c := newEnvController(t, gw)

		require.NoError(t, c.LoadExisting(context.Background()))
		assert.Equal(t, models.StatusRejected, c.Status())

		st, _ := c.State("renewableEnergy")
		assert.Equal(t, "30%", st.Value["value"])
		assert.Equal(t, 0.6, st.Points)
		assert.False(t, st.Dirty)
		assert.True(t, st.Saved)

		st, _ = c.State("emissionControl")
		assert.Nil(t, st.Certificate.Local)
		assert.Equal(t, "certificates/s1/environment/emissionControl.pdf", st.Certificate.Path)
	})

	t.Run("FetchFailureKeepsDefaults", func(t *testing.T) {
		gw := &fakeSubmissionGateway{fetchErr: &gateway.Error{Kind: gateway.KindNetwork, Op: "fetch submission"}}
		c := newEnvController(t, gw)

		err := c.LoadExisting(context.Background())
		assert.True(t, gateway.IsNetwork(err))

		st, ok := c.State("renewableEnergy")
		require.True(t, ok)
		assert.Empty(t, st.Value)
	})
}

func TestEditAndValidate(t *testing.T) {
	t.Run("EditMarksDirtyWithoutValidating", func(t *testing.T) {
		c := newEnvController(t, &fakeSubmissionGateway{})

		require.NoError(t, c.Edit("renewableEnergy", "value", "   "))
		st, _ := c.State("renewableEnergy")
		assert.True(t, st.Dirty)
		assert.False(t, st.LastUpdated.IsZero())
	})

	t.Run("UnknownSectionOrField", func(t *testing.T) {
		c := newEnvController(t, &fakeSubmissionGateway{})
		assert.ErrorIs(t, c.Edit("nope", "value", "x"), ErrUnknownSection)
		assert.ErrorIs(t, c.Edit("renewableEnergy", "nope", "x"), ErrUnknownField)
	})

	t.Run("ValidatePureAndRepeatable", func(t *testing.T) {
		c := newEnvController(t, &fakeSubmissionGateway{})
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

		before, _ := c.State("renewableEnergy")
		require.NoError(t, c.Validate("renewableEnergy"))
		require.NoError(t, c.Validate("renewableEnergy"))
		after, _ := c.State("renewableEnergy")
		assert.Equal(t, before, after)
	})

	t.Run("AttachFileSatisfiesCertificateRule", func(t *testing.T) {
		c := newEnvController(t, &fakeSubmissionGateway{})
		require.NoError(t, c.Edit("emissionControl", "value", "ETP"))
		assert.Error(t, c.Validate("emissionControl"))

		require.NoError(t, c.AttachFile("emissionControl", gateway.LocalFile{Name: "audit.pdf", Content: []byte("pdf")}))
		assert.NoError(t, c.Validate("emissionControl"))
	})
}

func TestSave(t *testing.T) {
	t.Run("InvalidSectionNeverHitsNetwork", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)

		assert.Error(t, c.Save(context.Background(), "renewableEnergy"))
		assert.Empty(t, gw.updates)
		assert.Zero(t, gw.uploadCalls)
	})

	t.Run("LocalFileUploadedOnceThenPathSent", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("emissionControl", "value", "ETP"))
		require.NoError(t, c.AttachFile("emissionControl", gateway.LocalFile{Name: "audit.pdf", Content: []byte("pdf")}))

		require.NoError(t, c.Save(context.Background(), "emissionControl"))
		assert.Equal(t, 1, gw.uploadCalls)
		require.Len(t, gw.updates, 1)
		assert.Equal(t, "certificates/s1/environment/emissionControl.pdf", gw.updates[0].update.Certificate)

		st, _ := c.State("emissionControl")
		assert.Nil(t, st.Certificate.Local) // local handle ถูกแทนด้วย path แล้ว
		assert.False(t, st.Dirty)
		assert.True(t, st.Saved)

		// save ซ้ำต้องไม่อัปโหลดไฟล์เดิมอีกรอบ
		require.NoError(t, c.Save(context.Background(), "emissionControl"))
		assert.Equal(t, 1, gw.uploadCalls)
		assert.Len(t, gw.updates, 2)
	})

	t.Run("UploadFailureAbortsSave", func(t *testing.T) {
		gw := &fakeSubmissionGateway{uploadErr: &gateway.Error{Kind: gateway.KindNetwork, Op: "upload certificate"}}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("emissionControl", "value", "ETP"))
		require.NoError(t, c.AttachFile("emissionControl", gateway.LocalFile{Name: "audit.pdf", Content: []byte("pdf")}))

		err := c.Save(context.Background(), "emissionControl")
		assert.True(t, gateway.IsNetwork(err))
		assert.Empty(t, gw.updates)

		st, _ := c.State("emissionControl")
		require.NotNil(t, st.Certificate.Local) // ไฟล์ยังอยู่ ลองใหม่ได้
		assert.Equal(t, "audit.pdf", st.Certificate.Local.Name)
		assert.True(t, st.Dirty)
		assert.False(t, st.Saving)
	})

	t.Run("UpdateFailureKeepsDirty", func(t *testing.T) {
		gw := &fakeSubmissionGateway{updateErr: &gateway.Error{Kind: gateway.KindServerRejected, Op: "save section", Message: "not editable"}}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

		assert.Error(t, c.Save(context.Background(), "renewableEnergy"))

		st, _ := c.State("renewableEnergy")
		assert.True(t, st.Dirty)
		assert.False(t, st.Saved)
		assert.Equal(t, "30%", st.Value["value"]) // ข้อมูลที่กรอกไม่หาย
	})

	t.Run("EditDuringSaveKeepsDirty", func(t *testing.T) {
		gw := &fakeSubmissionGateway{
			updateGate:    make(chan struct{}),
			updateEntered: make(chan struct{}, 1),
		}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

		done := make(chan error, 1)
		go func() { done <- c.Save(context.Background(), "renewableEnergy") }()
		<-gw.updateEntered

		// user พิมพ์ต่อระหว่าง save ค้างอยู่ที่ gateway
		require.NoError(t, c.Edit("renewableEnergy", "value", "55%"))
		close(gw.updateGate)
		require.NoError(t, <-done)

		// save รอบนี้ส่ง "30%" ไป ค่า "55%" ยังไม่เคยถูกส่ง ต้องยัง dirty
		require.Len(t, gw.updates, 1)
		assert.Equal(t, "30%", gw.updates[0].update.Value["value"])

		st, _ := c.State("renewableEnergy")
		assert.Equal(t, "55%", st.Value["value"])
		assert.True(t, st.Dirty)
		assert.False(t, st.Saved)
		assert.False(t, st.Saving)
	})

	t.Run("ReplacementFileSurvivesInFlightUpload", func(t *testing.T) {
		gw := &fakeSubmissionGateway{
			uploadGate:    make(chan struct{}),
			uploadEntered: make(chan struct{}, 1),
		}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("emissionControl", "value", "ETP"))
		require.NoError(t, c.AttachFile("emissionControl", gateway.LocalFile{Name: "old.pdf", Content: []byte("old")}))

		done := make(chan error, 1)
		go func() { done <- c.Save(context.Background(), "emissionControl") }()
		<-gw.uploadEntered

		// แนบไฟล์ใหม่ทับระหว่างไฟล์เก่ากำลังอัปโหลด
		require.NoError(t, c.AttachFile("emissionControl", gateway.LocalFile{Name: "new.pdf", Content: []byte("new")}))
		close(gw.uploadGate)
		require.NoError(t, <-done)

		// ไฟล์ใหม่ต้องยังรออัปโหลดอยู่ ไม่โดน path ของไฟล์เก่าทับ
		st, _ := c.State("emissionControl")
		require.NotNil(t, st.Certificate.Local)
		assert.Equal(t, "new.pdf", st.Certificate.Local.Name)
		assert.True(t, st.Dirty)
		assert.False(t, st.Saved)

		// save รอบถัดไปส่งไฟล์ใหม่ขึ้นจริง
		require.NoError(t, c.Save(context.Background(), "emissionControl"))
		assert.Equal(t, 2, gw.uploadCalls)
		st, _ = c.State("emissionControl")
		assert.Nil(t, st.Certificate.Local)
		assert.False(t, st.Dirty)
		assert.True(t, st.Saved)
	})
}

func TestNavigation(t *testing.T) {
	t.Run("NextValidatesSavesAndAdvances", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

		require.NoError(t, c.Next(context.Background()))
		assert.Equal(t, 1, c.CurrentIndex())
		require.Len(t, gw.updates, 1)
		assert.Equal(t, "renewableEnergy", gw.updates[0].section)
	})

	t.Run("NextBlockedByInvalidSection", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)

		assert.Error(t, c.Next(context.Background()))
		assert.Equal(t, 0, c.CurrentIndex())
		assert.Empty(t, gw.updates)
	})

	t.Run("NextAtLastSectionIsNoop", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)
		for i := 0; i < c.SectionCount()-1; i++ {
			key := c.CurrentKey()
			require.NoError(t, c.Edit(key, "value", "answer"))
			if key == "emissionControl" {
				require.NoError(t, c.AttachFile(key, gateway.LocalFile{Name: "a.pdf", Content: []byte("x")}))
			}
			require.NoError(t, c.Next(context.Background()))
		}
		require.Equal(t, c.SectionCount()-1, c.CurrentIndex())

		saves := len(gw.updates)
		require.NoError(t, c.Next(context.Background()))
		assert.Equal(t, c.SectionCount()-1, c.CurrentIndex())
		assert.Len(t, gw.updates, saves) // no-op: ไม่ save เพิ่ม
	})

	t.Run("PreviousFreeAndBounded", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))
		require.NoError(t, c.Next(context.Background()))

		c.Previous()
		assert.Equal(t, 0, c.CurrentIndex())
		c.Previous()
		assert.Equal(t, 0, c.CurrentIndex())
		assert.Len(t, gw.updates, 1) // previous ไม่ save
	})
}

func TestSubmit(t *testing.T) {
	t.Run("SavesCurrentSectionFirst", func(t *testing.T) {
		gw := &fakeSubmissionGateway{}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

		require.NoError(t, c.Submit(context.Background()))
		assert.True(t, gw.submitted)
		require.Len(t, gw.updates, 1)
		assert.Equal(t, models.StatusSubmitted, c.Status())
	})

	t.Run("BackendRejectionSurfacesAndKeepsDraft", func(t *testing.T) {
		gw := &fakeSubmissionGateway{submitErr: &gateway.Error{
			Kind: gateway.KindServerRejected, Op: "submit", Message: "submission is incomplete",
		}}
		c := newEnvController(t, gw)
		require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

		err := c.Submit(context.Background())
		require.Error(t, err)
		assert.Equal(t, gateway.KindServerRejected, gateway.KindOf(err))
		assert.False(t, gw.submitted)
		assert.Equal(t, models.StatusDraft, c.Status())

		st, _ := c.State("renewableEnergy")
		assert.Equal(t, "30%", st.Value["value"])
	})
}

func TestConcurrentSavesSameSectionSerialize(t *testing.T) {
	gw := &fakeSubmissionGateway{}
	c := newEnvController(t, gw)
	require.NoError(t, c.Edit("renewableEnergy", "value", "30%"))

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, c.Save(context.Background(), "renewableEnergy"))
		}()
	}
	wg.Wait()

	assert.Len(t, gw.updates, 4)
	st, _ := c.State("renewableEnergy")
	assert.False(t, st.Saving)
	assert.False(t, st.Dirty)
}
