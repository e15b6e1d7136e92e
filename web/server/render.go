package server

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/df07/go-pathtracer/pkg/core"
	"github.com/df07/go-pathtracer/pkg/encoders"
	"github.com/df07/go-pathtracer/pkg/renderer"
	"github.com/df07/go-pathtracer/pkg/scene"
)

const defaultSeed = 42

// RenderRequest represents a render request from the client. Zero sizes and
// budgets keep the scene's defaults.
type RenderRequest struct {
	Scene           string `json:"scene"`           // Scene ID (e.g., "random-spheres", "yaml:marbles")
	Width           int    `json:"width"`           // Image width
	Height          int    `json:"height"`          // Image height
	SamplesPerPixel int    `json:"samplesPerPixel"` // Rays per pixel
	MaxDepth        int    `json:"maxDepth"`        // Bounce budget
	Seed            int64  `json:"seed"`            // Base random seed
}

// Stats represents render statistics
type Stats struct {
	TotalPixels      int     `json:"totalPixels"`
	TotalSamples     int     `json:"totalSamples"`
	SamplesPerPixel  int     `json:"samplesPerPixel"`
	MaxDepth         int     `json:"maxDepth"`
	Workers          int     `json:"workers"`
	ElapsedMs        int64   `json:"elapsedMs"`
	SamplesPerSecond float64 `json:"samplesPerSecond"`
	AverageLuminance float64 `json:"averageLuminance"`
}

// RenderEvent is one message of a streamed render, sent as an SSE event or a
// websocket text frame
type RenderEvent struct {
	Type    string `json:"type"` // "progress", "console", "complete", "error"
	Rows    int    `json:"rows,omitempty"`
	Total   int    `json:"total,omitempty"`
	Message string `json:"message,omitempty"`
	Image   string `json:"image,omitempty"` // Base64 encoded PNG
	Stats   *Stats `json:"stats,omitempty"`
}

// renderJob is a prepared scene plus the raytracer that will render it
type renderJob struct {
	scene    *scene.Scene
	rt       *renderer.Raytracer
	progress chan renderer.Progress // nil unless streaming
	console  chan ConsoleMessage    // nil unless streaming
}

type renderOutcome struct {
	fb    *renderer.Framebuffer
	stats renderer.RenderStats
	err   error
}

// parseRenderRequest parses request parameters
func (s *Server) parseRenderRequest(r *http.Request) (*RenderRequest, error) {
	query := r.URL.Query()
	req := &RenderRequest{Scene: query.Get("scene")}
	if req.Scene == "" {
		req.Scene = "default"
	}

	var err error
	if req.Width, err = parseIntParam(query, "width", 0, 2, 2000); err != nil {
		return nil, err
	}
	if req.Height, err = parseIntParam(query, "height", 0, 2, 2000); err != nil {
		return nil, err
	}
	if (req.Width == 0) != (req.Height == 0) {
		return nil, fmt.Errorf("width and height must be set together")
	}
	if req.SamplesPerPixel, err = parseIntParam(query, "spp", 0, 1, 10000); err != nil {
		return nil, err
	}
	if req.MaxDepth, err = parseIntParam(query, "depth", 0, 1, 1000); err != nil {
		return nil, err
	}
	req.Seed = defaultSeed
	if value := query.Get("seed"); value != "" {
		if req.Seed, err = strconv.ParseInt(value, 10, 64); err != nil {
			return nil, fmt.Errorf("invalid seed: %s", value)
		}
	}

	if req.Width*req.Height > 800*600 && req.SamplesPerPixel > 100 {
		log.Warn().Int("width", req.Width).Int("height", req.Height).Int("spp", req.SamplesPerPixel).
			Msg("large image with high samples may render slowly")
	}

	return req, nil
}

// parseIntParam parses an integer parameter from URL query with validation
func parseIntParam(values url.Values, key string, defaultValue, min, max int) (int, error) {
	if value := values.Get(key); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil {
			return 0, fmt.Errorf("invalid %s: %s", key, value)
		}
		if parsed < min || parsed > max {
			return 0, fmt.Errorf("%s must be between %d and %d, got: %d", key, min, max, parsed)
		}
		return parsed, nil
	}
	return defaultValue, nil
}

// createScene resolves a scene ID and applies the request's overrides. Only
// built-in and discovered scenes are reachable, never arbitrary paths.
func (s *Server) createScene(req *RenderRequest) (*scene.Scene, error) {
	info, err := scene.FindScene(req.Scene, s.scenesDir)
	if err != nil {
		return nil, err
	}
	sceneObj, err := scene.CreateFromInfo(info)
	if err != nil {
		return nil, err
	}

	if req.Width != 0 {
		if err := sceneObj.Resize(req.Width, req.Height); err != nil {
			return nil, err
		}
	}
	if req.SamplesPerPixel != 0 {
		sceneObj.SamplingConfig.SamplesPerPixel = req.SamplesPerPixel
	}
	if req.MaxDepth != 0 {
		sceneObj.SamplingConfig.MaxDepth = req.MaxDepth
	}
	return sceneObj, nil
}

// newRenderJob builds the scene and raytracer for req. Streaming jobs get
// progress and console channels; others log through zerolog.
func (s *Server) newRenderJob(req *RenderRequest, streaming bool) (*renderJob, error) {
	sceneObj, err := s.createScene(req)
	if err != nil {
		return nil, err
	}

	job := &renderJob{scene: sceneObj}
	options := renderer.RenderOptions{Seed: req.Seed}
	if streaming {
		// Room for every row so no progress event is dropped
		job.progress = make(chan renderer.Progress, sceneObj.Height)
		var logger core.Logger
		job.console, logger = s.setupConsoleLogging()
		options.Progress = job.progress
		options.Logger = logger
	} else {
		options.Logger = renderer.NewZerologLogger(log.Logger)
	}

	job.rt, err = sceneObj.NewRaytracer(options)
	if err != nil {
		return nil, err
	}
	return job, nil
}

// setupConsoleLogging creates console channel and web logger for a render
func (s *Server) setupConsoleLogging() (chan ConsoleMessage, core.Logger) {
	consoleChan := make(chan ConsoleMessage, 50)
	renderID := fmt.Sprintf("render-%d", time.Now().UnixNano())
	webLogger := NewWebLogger(renderID, consoleChan)
	return consoleChan, webLogger
}

// requestErrorStatus maps a job setup error to an HTTP status
func requestErrorStatus(err error) int {
	if errors.Is(err, core.ErrInvalidConfig) {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

// handleRender renders synchronously and responds with a PNG
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRenderRequest(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid request: %v", err))
		return
	}

	job, err := s.newRenderJob(req, false)
	if err != nil {
		writeError(w, requestErrorStatus(err), err.Error())
		return
	}

	fb, stats, err := job.rt.Render(r.Context())
	if err != nil {
		// Client went away
		log.Info().Err(err).Str("scene", req.Scene).Msg("render abandoned")
		return
	}

	var buf bytes.Buffer
	if err := (encoders.PNGEncoder{}).Encode(&buf, fb); err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("X-Render-Elapsed-Ms", strconv.FormatInt(stats.Duration.Milliseconds(), 10))
	w.Header().Set("X-Render-Samples", strconv.Itoa(stats.TotalSamples))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

// handleRenderStream renders with progress and console output streamed via SSE
func (s *Server) handleRenderStream(w http.ResponseWriter, r *http.Request) {
	s.setSSEHeaders(w)

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming not supported", http.StatusInternalServerError)
		return
	}

	send := func(event RenderEvent) error {
		data, err := json.Marshal(event)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, data); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	}

	req, err := s.parseRenderRequest(r)
	if err != nil {
		send(RenderEvent{Type: "error", Message: fmt.Sprintf("Invalid request: %v", err)})
		return
	}
	job, err := s.newRenderJob(req, true)
	if err != nil {
		send(RenderEvent{Type: "error", Message: err.Error()})
		return
	}

	if err := s.streamRender(r.Context(), job, send); err != nil {
		log.Info().Err(err).Str("scene", req.Scene).Msg("render stream ended early")
	}
}

// setSSEHeaders sets the required headers for Server-Sent Events
func (s *Server) setSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("Access-Control-Allow-Origin", "*")
}

// streamRender runs job and forwards its events to send from this goroutine
// only. A failed send cancels the render.
func (s *Server) streamRender(ctx context.Context, job *renderJob, send func(RenderEvent) error) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	done := make(chan renderOutcome, 1)
	go func() {
		fb, stats, err := job.rt.Render(ctx)
		done <- renderOutcome{fb: fb, stats: stats, err: err}
	}()

	abort := func(err error) error {
		cancel()
		<-done
		return err
	}

	for {
		select {
		case p := <-job.progress:
			if err := send(progressEvent(p)); err != nil {
				return abort(err)
			}

		case msg := <-job.console:
			if err := send(RenderEvent{Type: "console", Message: msg.Message}); err != nil {
				return abort(err)
			}

		case out := <-done:
			// Events still buffered are sent before the result
			for pending := true; pending; {
				select {
				case p := <-job.progress:
					if err := send(progressEvent(p)); err != nil {
						return err
					}
				case msg := <-job.console:
					if err := send(RenderEvent{Type: "console", Message: msg.Message}); err != nil {
						return err
					}
				default:
					pending = false
				}
			}

			if out.err != nil {
				return send(RenderEvent{Type: "error", Message: fmt.Sprintf("Render error: %v", out.err)})
			}

			imageData, err := imageToBase64PNG(out.fb)
			if err != nil {
				return send(RenderEvent{Type: "error", Message: fmt.Sprintf("failed to encode image: %v", err)})
			}
			stats := newStats(out.stats, out.fb)
			return send(RenderEvent{Type: "complete", Image: imageData, Stats: &stats})
		}
	}
}

func progressEvent(p renderer.Progress) RenderEvent {
	return RenderEvent{Type: "progress", Rows: p.RowsCompleted, Total: p.TotalRows}
}

func newStats(stats renderer.RenderStats, fb *renderer.Framebuffer) Stats {
	return Stats{
		TotalPixels:      stats.TotalPixels,
		TotalSamples:     stats.TotalSamples,
		SamplesPerPixel:  stats.SamplesPerPixel,
		MaxDepth:         stats.MaxDepth,
		Workers:          stats.Workers,
		ElapsedMs:        stats.Duration.Milliseconds(),
		SamplesPerSecond: stats.SamplesPerSecond(),
		AverageLuminance: renderer.CalculateAverageLuminance(fb),
	}
}

// imageToBase64PNG converts a framebuffer to base64-encoded PNG
func imageToBase64PNG(fb *renderer.Framebuffer) (string, error) {
	var buf bytes.Buffer
	if err := (encoders.PNGEncoder{}).Encode(&buf, fb); err != nil {
		return "", err
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes()), nil
}
