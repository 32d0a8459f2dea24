package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/lehigh-university-libraries/transcribe/internal/images"
	"github.com/lehigh-university-libraries/transcribe/internal/models"
)

// Gateway is the subset of gateway.Client the controller drives
type Gateway interface {
	ExtractText(ctx context.Context, payload images.Payload) (models.ExtractionResult, error)
	Translate(ctx context.Context, text, targetLanguage string) (models.TranslationResult, error)
	ExtractAndTranslate(ctx context.Context, payload images.Payload, targetLanguage string) (models.OCRResult, error)
}

// Option configures a Controller
type Option func(*Controller)

// WithTargetLanguage sets the language used when a translate request names none
func WithTargetLanguage(lang string) Option {
	return func(c *Controller) {
		c.targetLanguage = lang
	}
}

// WithClock overrides time.Now
func WithClock(now func() time.Time) Option {
	return func(c *Controller) {
		c.now = now
	}
}

// Controller owns the state of one image workflow. It is safe for concurrent
// use; provider calls are made without holding the lock.
type Controller struct {
	gw  Gateway
	now func() time.Time

	mu             sync.Mutex
	phase          Phase
	generation     uint64
	image          *images.Input
	imageInfo      *models.ImageInfo
	targetLanguage string
	extraction     *models.ExtractionResult
	translation    *models.TranslationResult
	errMsg         string
	updatedAt      time.Time
}

// New creates a controller in the Idle phase
func New(gw Gateway, opts ...Option) *Controller {
	c := &Controller{
		gw:             gw,
		now:            time.Now,
		targetLanguage: "Spanish",
	}
	for _, opt := range opts {
		opt(c)
	}
	c.updatedAt = c.now()
	return c
}

// State returns a copy of the current state
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := State{
		Phase:          c.phase,
		Generation:     c.generation,
		TargetLanguage: c.targetLanguage,
		Err:            c.errMsg,
		UpdatedAt:      c.updatedAt,
	}
	if c.imageInfo != nil {
		info := *c.imageInfo
		s.Image = &info
	}
	if c.extraction != nil {
		ex := *c.extraction
		ex.UnclearSections = append([]string(nil), c.extraction.UnclearSections...)
		ex.DetectedLanguages = append([]string(nil), c.extraction.DetectedLanguages...)
		s.Extraction = &ex
	}
	if c.translation != nil {
		tr := *c.translation
		s.Translation = &tr
	}
	return s
}

// SelectImage replaces the current image. Results and errors are cleared and
// any in-flight response for the previous image will be discarded.
func (c *Controller) SelectImage(in *images.Input) error {
	if in == nil {
		return &PreconditionError{Action: "select image", Reason: "no image provided"}
	}

	info := &models.ImageInfo{
		Filename: in.Filename,
		MIMEType: in.MIMEType,
		Size:     in.Size(),
	}
	if w, h, err := images.Dimensions(in); err == nil {
		info.Width, info.Height = w, h
	} else {
		slog.Debug("Unable to read image dimensions", "filename", in.Filename, "error", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.image = in
	c.imageInfo = info
	c.reset()
	slog.Info("Image selected", "filename", in.Filename, "type", in.MIMEType, "bytes", in.Size(), "generation", c.generation)
	return nil
}

// Clear drops the image and all results
func (c *Controller) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.generation++
	c.image = nil
	c.imageInfo = nil
	c.reset()
}

// SetTargetLanguage records the preferred translation language
func (c *Controller) SetTargetLanguage(lang string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if lang != "" {
		c.targetLanguage = lang
		c.updatedAt = c.now()
	}
}

// RequestExtract reads the text of the selected image
func (c *Controller) RequestExtract(ctx context.Context) error {
	c.mu.Lock()
	if err := c.checkImage("extract"); err != nil {
		c.mu.Unlock()
		return err
	}
	gen, in := c.begin(Extracting)
	c.mu.Unlock()

	payload, err := images.Encode(in)
	if err != nil {
		return c.fail(gen, "extract", err)
	}

	result, err := c.gw.ExtractText(ctx, payload)
	if err != nil {
		return c.fail(gen, "extract", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.Info("Discarding stale extraction", "generation", gen, "current", c.generation)
		return ErrSuperseded
	}
	c.extraction = &result
	c.phase = ExtractedReady
	c.updatedAt = c.now()
	return nil
}

// RequestTranslate translates the extracted text. An empty targetLanguage
// uses the stored target language; a non-empty one replaces it.
func (c *Controller) RequestTranslate(ctx context.Context, targetLanguage string) error {
	c.mu.Lock()
	if c.extraction.Empty() {
		c.mu.Unlock()
		return &PreconditionError{Action: "translate", Reason: "there is no extracted text to translate"}
	}
	if c.phase.Busy() {
		c.mu.Unlock()
		return &PreconditionError{Action: "translate", Reason: "a request is already in progress"}
	}
	if targetLanguage != "" {
		c.targetLanguage = targetLanguage
	}
	lang := c.targetLanguage
	text := c.extraction.RawText
	gen, _ := c.begin(Translating)
	c.mu.Unlock()

	result, err := c.gw.Translate(ctx, text, lang)
	if err != nil {
		return c.fail(gen, "translate", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.Info("Discarding stale translation", "generation", gen, "current", c.generation)
		return ErrSuperseded
	}
	c.translation = &result
	c.phase = TranslatedReady
	c.updatedAt = c.now()
	return nil
}

// RequestProcess extracts and translates in a single provider round trip
func (c *Controller) RequestProcess(ctx context.Context, targetLanguage string) error {
	c.mu.Lock()
	if err := c.checkImage("process"); err != nil {
		c.mu.Unlock()
		return err
	}
	if targetLanguage != "" {
		c.targetLanguage = targetLanguage
	}
	lang := c.targetLanguage
	gen, in := c.begin(Extracting)
	c.mu.Unlock()

	payload, err := images.Encode(in)
	if err != nil {
		return c.fail(gen, "process", err)
	}

	result, err := c.gw.ExtractAndTranslate(ctx, payload, lang)
	if err != nil {
		return c.fail(gen, "process", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if gen != c.generation {
		slog.Info("Discarding stale result", "generation", gen, "current", c.generation)
		return ErrSuperseded
	}
	c.extraction = &result.Extraction
	c.translation = &result.Translation
	c.phase = TranslatedReady
	c.updatedAt = c.now()
	return nil
}

// checkImage must be called with the lock held
func (c *Controller) checkImage(action string) error {
	if c.image == nil {
		return &PreconditionError{Action: action, Reason: "please upload an image first"}
	}
	if c.phase.Busy() {
		return &PreconditionError{Action: action, Reason: "a request is already in progress"}
	}
	return nil
}

// begin must be called with the lock held. Extraction clears both results;
// translation only clears the previous translation.
func (c *Controller) begin(phase Phase) (uint64, *images.Input) {
	if phase == Extracting {
		c.extraction = nil
	}
	c.translation = nil
	c.errMsg = ""
	c.phase = phase
	c.updatedAt = c.now()
	return c.generation, c.image
}

// reset must be called with the lock held
func (c *Controller) reset() {
	c.phase = Idle
	c.extraction = nil
	c.translation = nil
	c.errMsg = ""
	c.updatedAt = c.now()
}

func (c *Controller) fail(gen uint64, action string, err error) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if gen != c.generation {
		slog.Info("Discarding stale failure", "action", action, "generation", gen, "current", c.generation, "error", err)
		return ErrSuperseded
	}

	if action != "translate" {
		c.extraction = nil
	}
	c.translation = nil
	c.phase = Failed
	c.errMsg = UserMessage(err)
	c.updatedAt = c.now()
	slog.Error("Workflow step failed", "action", action, "generation", gen, "error", err)
	return err
}

// UserMessage turns an error into the single message shown to users
func UserMessage(err error) string {
	var encErr *images.EncodingError
	if errors.As(err, &encErr) {
		return "could not read the selected file"
	}
	return err.Error()
}
