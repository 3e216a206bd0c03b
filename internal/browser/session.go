package browser

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/network"
	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/chromedp"

	"github.com/law-makers/shiptrack/internal/fleet"
	"github.com/law-makers/shiptrack/internal/proxy"
)

// Session is one browser process with a single tab
type Session struct {
	ctx         context.Context
	cancel      context.CancelFunc
	allocCancel context.CancelFunc
	proxyServer string
	proxies     *proxy.Pool
	headers     map[string]string

	closeOnce sync.Once
	closeErr  error
}

// run executes actions on the tab, bounded by the caller's ctx. Cancelling
// ctx aborts the actions without closing the tab.
func (s *Session) run(ctx context.Context, actions ...chromedp.Action) error {
	var (
		actx   context.Context
		cancel context.CancelFunc
	)
	if deadline, ok := ctx.Deadline(); ok {
		actx, cancel = context.WithDeadline(s.ctx, deadline)
	} else {
		actx, cancel = context.WithCancel(s.ctx)
	}
	defer cancel()
	stop := context.AfterFunc(ctx, cancel)
	defer stop()

	err := chromedp.Run(actx, actions...)
	if err != nil && ctx.Err() != nil {
		return fmt.Errorf("%v: %w", err, ctx.Err())
	}
	if err != nil && errors.Is(actx.Err(), context.DeadlineExceeded) {
		return fmt.Errorf("%v: %w", err, context.DeadlineExceeded)
	}
	return err
}

func (s *Session) Navigate(ctx context.Context, url string) error {
	var actions []chromedp.Action
	if len(s.headers) > 0 {
		h := make(network.Headers, len(s.headers))
		for k, v := range s.headers {
			h[k] = v
		}
		actions = append(actions, network.Enable(), network.SetExtraHTTPHeaders(h))
	}
	actions = append(actions, chromedp.Navigate(url))
	if err := s.run(ctx, actions...); err != nil {
		s.proxies.MarkFailed(s.proxyServer)
		return err
	}
	s.proxies.MarkHealthy(s.proxyServer)
	return nil
}

func (s *Session) Click(ctx context.Context, selector string) (bool, error) {
	err := s.run(ctx,
		chromedp.WaitVisible(selector, chromedp.ByQuery),
		chromedp.Click(selector, chromedp.ByQuery),
	)
	if errors.Is(err, context.DeadlineExceeded) {
		return false, nil
	}
	return err == nil, err
}

func (s *Session) Hover(ctx context.Context, selector string) (bool, error) {
	var found bool
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		b, ok, err := firstBox(ctx, selector)
		if err != nil || !ok {
			return err
		}
		found = true
		x, y := b.center()
		return chromedp.MouseEvent(input.MouseMoved, x, y).Do(ctx)
	}))
	return found, err
}

func (s *Session) Text(ctx context.Context) (string, error) {
	var text string
	err := s.run(ctx, chromedp.Evaluate(`document.body ? document.body.innerText : ""`, &text))
	return text, err
}

// Screenshot centers a clip-sized window on frameSelector when it is
// present, otherwise captures clip as given.
func (s *Session) Screenshot(ctx context.Context, frameSelector string, clip fleet.Clip) ([]byte, error) {
	var png []byte
	err := s.run(ctx, chromedp.ActionFunc(func(ctx context.Context) error {
		region := clip
		if frameSelector != "" {
			b, ok, err := firstBox(ctx, frameSelector)
			if err != nil {
				return err
			}
			if ok {
				region = frameAround(b, clip)
			}
		}

		var err error
		png, err = page.CaptureScreenshot().
			WithFormat(page.CaptureScreenshotFormatPng).
			WithClip(&page.Viewport{X: region.X, Y: region.Y, Width: region.Width, Height: region.Height, Scale: 1}).
			Do(ctx)
		return err
	}))
	return png, err
}

// Close shuts the browser down. Later calls return the first result.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		if err := chromedp.Cancel(s.ctx); err != nil && !errors.Is(err, context.Canceled) {
			s.closeErr = fmt.Errorf("close browser: %w", err)
		}
		s.release()
	})
	return s.closeErr
}

func (s *Session) release() {
	s.cancel()
	s.allocCancel()
}

// box is an element's border box in CSS pixels
type box struct {
	x, y, width, height float64
}

func (b box) center() (float64, float64) {
	return b.x + b.width/2, b.y + b.height/2
}

// firstBox returns the border box of the first element matching selector
func firstBox(ctx context.Context, selector string) (box, bool, error) {
	var nodes []*cdp.Node
	if err := chromedp.Nodes(selector, &nodes, chromedp.ByQuery, chromedp.AtLeast(0)).Do(ctx); err != nil {
		return box{}, false, err
	}
	if len(nodes) == 0 {
		return box{}, false, nil
	}
	model, err := dom.GetBoxModel().WithNodeID(nodes[0].NodeID).Do(ctx)
	if err != nil {
		return box{}, false, fmt.Errorf("box model for %s: %w", selector, err)
	}
	b, ok := quadBounds(model.Border)
	return b, ok, nil
}

// quadBounds is the bounding rectangle of a quad of four x,y pairs
func quadBounds(q dom.Quad) (box, bool) {
	if len(q) < 8 {
		return box{}, false
	}
	minX, minY, maxX, maxY := q[0], q[1], q[0], q[1]
	for i := 2; i+1 < len(q); i += 2 {
		minX, maxX = min(minX, q[i]), max(maxX, q[i])
		minY, maxY = min(minY, q[i+1]), max(maxY, q[i+1])
	}
	return box{x: minX, y: minY, width: maxX - minX, height: maxY - minY}, true
}

// frameAround keeps the size of clip and moves it to center on b
func frameAround(b box, clip fleet.Clip) fleet.Clip {
	cx, cy := b.center()
	return fleet.Clip{
		X:      max(0, cx-clip.Width/2),
		Y:      max(0, cy-clip.Height/2),
		Width:  clip.Width,
		Height: clip.Height,
	}
}
