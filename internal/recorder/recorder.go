package recorder

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"rpascribe/internal/dom"
	"rpascribe/internal/navigation"
	"rpascribe/internal/session"
	"rpascribe/internal/tracker"
	"rpascribe/pkg/chrome"
)

// Viewport is the emulated browser window for a recording.
type Viewport struct {
	Width     int    `json:"width"`
	Height    int    `json:"height"`
	UserAgent string `json:"user_agent"`
}

const (
	defaultViewportWidth  = 1280
	defaultViewportHeight = 800

	eventPollInterval = 100 * time.Millisecond
)

// Recorder drives one Chrome instance for one session: it injects the
// capture script, drains its event buffer into the tracker, and feeds page
// lifecycle signals to the navigation observer.
type Recorder struct {
	mu       sync.Mutex
	sess     *session.Session
	track    *tracker.Tracker
	obs      *navigation.Observer
	settings tracker.Settings
	viewport Viewport
	headless bool

	ctx       context.Context
	cancel    context.CancelFunc
	mainFrame cdp.FrameID
	running   bool
}

func New(sess *session.Session, settings tracker.Settings, vp Viewport, headless bool) *Recorder {
	if vp.Width <= 0 {
		vp.Width = defaultViewportWidth
	}
	if vp.Height <= 0 {
		vp.Height = defaultViewportHeight
	}
	return &Recorder{
		sess:     sess,
		obs:      navigation.NewObserver(sess),
		settings: settings,
		viewport: vp,
		headless: headless,
	}
}

func (r *Recorder) Session() *session.Session { return r.sess }

// Start launches Chrome, navigates to the session's target URL, injects
// the capture script and begins polling for events.
func (r *Recorder) Start() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.running {
		return fmt.Errorf("recording is already in progress for session %s", r.sess.ID)
	}

	chromePath := chrome.GetChromePath()
	if chromePath == "" {
		chromePath = chrome.GetFlatpakChromePath()
		if chromePath == "" {
			return fmt.Errorf("Chrome browser not found. Please install Google Chrome or Chromium")
		}
	}

	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.ExecPath(chromePath),
		chromedp.Flag("headless", r.headless),
		chromedp.Flag("disable-blink-features", "AutomationControlled"),
		chromedp.Flag("disable-dev-shm-usage", true),
		chromedp.Flag("no-sandbox", true),
		chromedp.Flag("disable-extensions", true),
		chromedp.Flag("disable-background-timer-throttling", true),
		chromedp.Flag("disable-backgrounding-occluded-windows", true),
		chromedp.Flag("disable-renderer-backgrounding", true),
		chromedp.Flag("ignore-certificate-errors", true),
		chromedp.Flag("no-first-run", true),
		chromedp.Flag("disable-background-networking", true),
		chromedp.Flag("disable-component-update", true),
		chromedp.Flag("disable-sync", true),
		chromedp.Flag("no-pings", true),
	)
	if r.viewport.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.viewport.UserAgent))
	}

	allocCtx, allocCancel := chromedp.NewExecAllocator(context.Background(), opts...)
	ctx, ctxCancel := chromedp.NewContext(allocCtx, chromedp.WithLogf(log.Printf))
	r.ctx = ctx
	r.cancel = func() {
		ctxCancel()
		allocCancel()
	}

	r.track = tracker.New(r.sess, &liveDocument{ctx: ctx}, r.settings)
	r.track.Attach()

	chromedp.ListenTarget(ctx, r.onLifecycleEvent)

	err := chromedp.Run(ctx,
		chromedp.EmulateViewport(int64(r.viewport.Width), int64(r.viewport.Height)),
		chromedp.Navigate(r.sess.TargetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(captureScript(), nil),
	)
	if err != nil {
		r.cancel()
		return fmt.Errorf("failed to start recording: %w", err)
	}

	if err := r.sess.Start(time.Now().UnixMilli()); err != nil {
		r.cancel()
		return err
	}

	r.running = true
	go r.pollEvents()

	return nil
}

// Stop ends the recording for good: debounce timers and staged content are
// cleared, the session is completed and Chrome is shut down.
func (r *Recorder) Stop() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if !r.running {
		return fmt.Errorf("no recording in progress for session %s", r.sess.ID)
	}

	r.track.Reset()
	r.track.Detach()
	r.sess.Complete()

	if r.cancel != nil {
		r.cancel()
	}
	r.running = false
	return nil
}

// Restart clears the log and re-navigates to the target URL for a fresh
// take without relaunching Chrome.
func (r *Recorder) Restart() error {
	r.mu.Lock()
	if !r.running {
		r.mu.Unlock()
		return fmt.Errorf("no recording in progress for session %s", r.sess.ID)
	}
	ctx := r.ctx
	r.mu.Unlock()

	r.track.Reset()
	r.sess.Restart(time.Now().UnixMilli())

	return chromedp.Run(ctx,
		chromedp.Navigate(r.sess.TargetURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.Evaluate(captureScript(), nil),
	)
}

// UpdateSettings applies hot-reloaded capture settings to the tracker.
func (r *Recorder) UpdateSettings(s tracker.Settings) {
	r.mu.Lock()
	track := r.track
	r.settings = s
	r.mu.Unlock()
	if track != nil {
		track.UpdateSettings(s)
	}
}

// onLifecycleEvent maps CDP page events onto the navigation observer. Only
// the top-level frame triggers the synthetic cleanup/settle actions.
func (r *Recorder) onLifecycleEvent(ev interface{}) {
	switch e := ev.(type) {
	case *page.EventFrameNavigated:
		if e.Frame.ParentID == "" {
			r.mu.Lock()
			r.mainFrame = e.Frame.ID
			r.mu.Unlock()
		}

	case *page.EventFrameStartedLoading:
		if r.isMainFrame(e.FrameID) {
			r.obs.BeforeNavigate()
		}

	case *page.EventFrameStoppedLoading:
		top := r.isMainFrame(e.FrameID)
		// Run cannot be called from inside the listener; re-inject from a
		// fresh goroutine, then emit the synthetic actions.
		go func() {
			if top {
				if err := chromedp.Run(r.ctx, chromedp.Evaluate(captureScript(), nil)); err != nil {
					log.Printf("recorder: script re-injection failed for session %s: %v", r.sess.ID, err)
				}
			}
			r.obs.NavigationCompleted(top)
		}()
	}
}

func (r *Recorder) isMainFrame(id cdp.FrameID) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.mainFrame != "" && id == r.mainFrame
}

// pollEvents drains the in-page event buffer on a short interval and feeds
// the tracker. All tracker event handling, including selector uniqueness
// queries, happens on this goroutine.
func (r *Recorder) pollEvents() {
	ticker := time.NewTicker(eventPollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-r.ctx.Done():
			return
		case <-ticker.C:
			if r.sess.State() == session.StateCompleted {
				return
			}

			var events []dom.RawEvent
			err := chromedp.Run(r.ctx,
				chromedp.Evaluate(`window.__rpascribe ? window.__rpascribe.drain() : []`, &events),
			)
			if err != nil {
				log.Printf("recorder: event poll failed for session %s: %v", r.sess.ID, err)
				continue
			}

			for _, ev := range events {
				r.track.HandleEvent(ev)
			}
		}
	}
}

// liveDocument answers selector uniqueness queries against the live page.
type liveDocument struct {
	ctx context.Context
}

func (d *liveDocument) Count(sel string) int {
	quoted, err := json.Marshal(sel)
	if err != nil {
		return 0
	}

	ctx, cancel := context.WithTimeout(d.ctx, 2*time.Second)
	defer cancel()

	var n int
	expr := fmt.Sprintf(`window.__rpascribe ? window.__rpascribe.count(%s) : 0`, quoted)
	if err := chromedp.Run(ctx, chromedp.Evaluate(expr, &n)); err != nil {
		log.Printf("recorder: selector count failed: %v", err)
		return 0
	}
	return n
}
