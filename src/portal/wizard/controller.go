// Package wizard drives the supplier-facing questionnaire form: one
// controller per category, stepping through the category's sections in
// schema order with per-section dirty tracking, file attachment and save.
package wizard

import (
	"Backend-NetZero/src/models"
	"Backend-NetZero/src/portal/gateway"
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

var (
	ErrUnknownSection = errors.New("unknown section")
	ErrUnknownField   = errors.New("unknown field")
)

// Certificate is the evidence slot of one section. At most one side is set:
// Local = เลือกไฟล์แล้วแต่ยังไม่อัปโหลด, Path = อัปโหลดแล้ว (media path)
type Certificate struct {
	Local *gateway.LocalFile
	Path  string
}

// Present reports whether the section has any evidence attached.
func (c Certificate) Present() bool { return c.Local != nil || c.Path != "" }

// SectionState is a read-only snapshot of one section for rendering.
type SectionState struct {
	Def         models.SectionDef
	Value       map[string]string
	Certificate Certificate
	Points      float64
	Remarks     string
	LastUpdated time.Time
	Dirty       bool
	Saving      bool
	Saved       bool
}

type sectionState struct {
	def         models.SectionDef
	value       map[string]string
	cert        Certificate
	points      float64
	remarks     string
	lastUpdated time.Time
	dirty       bool
	saving      bool
	saved       bool

	// editGen counts edits and attachments. A save snapshots it on entry
	// and may only clear dirty when no edit landed while it was in flight.
	editGen int

	// saveMu serializes saves of THIS section; saves of different
	// sections may run concurrently
	saveMu sync.Mutex
}

// Controller holds the wizard state for one category.
type Controller struct {
	gw      gateway.SubmissionGateway
	session gateway.Session
	schema  models.CategorySchema
	status  string

	mu       sync.Mutex
	current  int
	sections map[string]*sectionState
}

// New builds a controller for the given category with every section empty.
func New(gw gateway.SubmissionGateway, session gateway.Session, category string) (*Controller, error) {
	schema, ok := models.SchemaFor(category)
	if !ok {
		return nil, fmt.Errorf("unknown category %q", category)
	}

	sections := make(map[string]*sectionState, len(schema.Sections))
	for _, def := range schema.Sections {
		sections[def.Key] = &sectionState{def: def, value: map[string]string{}}
	}
	return &Controller{
		gw:       gw,
		session:  session,
		schema:   schema,
		status:   models.StatusDraft,
		sections: sections,
	}, nil
}

// LoadExisting overlays previously saved data onto the empty form.
// A not-found answer is the normal first-visit state, not a failure; any
// other error is returned and the controller stays usable with defaults.
func (c *Controller) LoadExisting(ctx context.Context) error {
	sub, err := c.gw.FetchSubmission(ctx, c.session)
	if err != nil {
		if gateway.IsNotFound(err) {
			return nil
		}
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = sub.Status
	for key, saved := range sub.Category(c.schema.Key) {
		st, ok := c.sections[key]
		if !ok {
			continue // ข้อมูลเก่าที่ schema ไม่รู้จักแล้ว ข้าม
		}
		st.value = map[string]string{}
		for k, v := range saved.Value {
			st.value[k] = v
		}
		st.cert = Certificate{Path: saved.Certificate}
		st.points = saved.Points
		st.remarks = saved.Remarks
		st.lastUpdated = saved.LastUpdated
		st.dirty = false
		st.saved = true
	}
	return nil
}

// Edit updates one field in place. No validation happens here: the user may
// type through invalid intermediate states freely.
func (c *Controller) Edit(sectionKey, field, value string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.sections[sectionKey]
	if !ok {
		return ErrUnknownSection
	}
	known := false
	for _, f := range st.def.Fields {
		if f.Name == field {
			known = true
			break
		}
	}
	if !known {
		return ErrUnknownField
	}

	st.value[field] = value
	st.lastUpdated = time.Now()
	st.dirty = true
	st.saved = false
	st.editGen++
	return nil
}

// AttachFile stages a local evidence file for the section, replacing any
// previously attached or uploaded certificate.
func (c *Controller) AttachFile(sectionKey string, file gateway.LocalFile) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.sections[sectionKey]
	if !ok {
		return ErrUnknownSection
	}
	st.cert = Certificate{Local: &file}
	st.lastUpdated = time.Now()
	st.dirty = true
	st.saved = false
	st.editGen++
	return nil
}

// Validate checks the section against its schema without touching the
// network or mutating anything.
func (c *Controller) Validate(sectionKey string) error {
	c.mu.Lock()
	st, ok := c.sections[sectionKey]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownSection
	}
	value := copyValue(st.value)
	hasCert := st.cert.Present()
	def := st.def
	c.mu.Unlock()

	return def.Validate(value, hasCert)
}

// Save validates the section, uploads a staged file if one exists, then
// persists the section. A failed upload aborts the save and keeps the local
// file staged; a successful upload replaces it with the returned path so the
// file is transmitted at most once.
func (c *Controller) Save(ctx context.Context, sectionKey string) error {
	c.mu.Lock()
	st, ok := c.sections[sectionKey]
	if !ok {
		c.mu.Unlock()
		return ErrUnknownSection
	}
	c.mu.Unlock()

	st.saveMu.Lock()
	defer st.saveMu.Unlock()

	if err := c.Validate(sectionKey); err != nil {
		return err
	}

	c.mu.Lock()
	st.saving = true
	gen := st.editGen
	value := copyValue(st.value)
	local := st.cert.Local
	path := st.cert.Path
	c.mu.Unlock()

	// การ save ที่สำเร็จเคลียร์ dirty ได้เฉพาะเมื่อไม่มี edit แทรกระหว่างรอ
	// gateway ไม่งั้นค่าล่าสุดของ user จะดูเหมือน saved ทั้งที่ยังไม่เคยส่ง
	finish := func(saved bool) {
		c.mu.Lock()
		st.saving = false
		if saved && st.editGen == gen {
			st.dirty = false
			st.saved = true
		}
		c.mu.Unlock()
	}

	if local != nil {
		uploaded, err := c.gw.UploadCertificate(ctx, c.session, c.schema.Key, sectionKey, *local)
		if err != nil {
			finish(false)
			return err
		}
		path = uploaded
		c.mu.Lock()
		if st.cert.Local == local {
			// ไฟล์ขึ้นแล้ว เก็บ path อย่างเดียว แต่ถ้า user แนบไฟล์ใหม่
			// ระหว่างอัปโหลด ไฟล์ใหม่ต้องคงอยู่รอ save รอบถัดไป
			st.cert = Certificate{Path: uploaded}
		}
		c.mu.Unlock()
	}

	err := c.gw.UpdateSection(ctx, c.session, c.schema.Key, sectionKey, gateway.SectionUpdate{
		Value:       value,
		Certificate: path,
	})
	if err != nil {
		finish(false)
		return err
	}
	finish(true)

	c.mu.Lock()
	c.status = models.StatusDraft // แก้หลัง reject = กลับเป็น draft
	c.mu.Unlock()
	return nil
}

// Next validates and saves the current section, then advances one step.
// At the last section it does nothing.
func (c *Controller) Next(ctx context.Context) error {
	c.mu.Lock()
	if c.current >= len(c.schema.Sections)-1 {
		c.mu.Unlock()
		return nil
	}
	key := c.schema.Sections[c.current].Key
	c.mu.Unlock()

	if err := c.Save(ctx, key); err != nil {
		return err
	}

	c.mu.Lock()
	if c.current < len(c.schema.Sections)-1 {
		c.current++
	}
	c.mu.Unlock()
	return nil
}

// Previous steps back without validating or saving. At the first section it
// does nothing.
func (c *Controller) Previous() {
	c.mu.Lock()
	if c.current > 0 {
		c.current--
	}
	c.mu.Unlock()
}

// Submit saves the current section, then asks the backend to move the whole
// submission into review. Completeness across sections is the backend's
// call; its rejection comes back as-is for the UI to show.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	key := c.schema.Sections[c.current].Key
	c.mu.Unlock()

	if err := c.Save(ctx, key); err != nil {
		return err
	}
	if err := c.gw.Submit(ctx, c.session); err != nil {
		return err
	}

	c.mu.Lock()
	c.status = models.StatusSubmitted
	c.mu.Unlock()
	return nil
}

// CurrentIndex returns the zero-based step position.
func (c *Controller) CurrentIndex() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.current
}

// CurrentKey returns the section key of the current step.
func (c *Controller) CurrentKey() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.schema.Sections[c.current].Key
}

// SectionCount returns the number of steps.
func (c *Controller) SectionCount() int { return len(c.schema.Sections) }

// Schema returns the category schema driving this wizard.
func (c *Controller) Schema() models.CategorySchema { return c.schema }

// Status returns the last known submission status.
func (c *Controller) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// State snapshots one section for rendering.
func (c *Controller) State(sectionKey string) (SectionState, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	st, ok := c.sections[sectionKey]
	if !ok {
		return SectionState{}, false
	}
	return SectionState{
		Def:         st.def,
		Value:       copyValue(st.value),
		Certificate: st.cert,
		Points:      st.points,
		Remarks:     st.remarks,
		LastUpdated: st.lastUpdated,
		Dirty:       st.dirty,
		Saving:      st.saving,
		Saved:       st.saved,
	}, true
}

func copyValue(v map[string]string) map[string]string {
	out := make(map[string]string, len(v))
	for k, val := range v {
		out[k] = val
	}
	return out
}
