// Package host serves hash and verify calls over a JSON-lines stream, one
// request object per input line and one response object per output line.
// Responses are written as calls complete and carry the request id.
package host

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"

	"github.com/russellromney/argon2bind/internal/diag"
	"github.com/russellromney/argon2bind/internal/dispatch"
	"github.com/russellromney/argon2bind/internal/hasher"
	"github.com/russellromney/argon2bind/internal/models"
)

// MaxLineSize bounds a single request line
const MaxLineSize = 1 << 20

// ErrUnknownOp is reported for a request whose op is neither hash nor verify
var ErrUnknownOp = errors.New("unknown op")

// Server dispatches requests to a pool of workers
type Server struct {
	hasher  *hasher.Hasher
	workers int
	logger  *log.Logger
}

// NewServer creates a Server. workers <= 0 uses one worker per CPU.
func NewServer(h *hasher.Hasher, workers int, logger *log.Logger) *Server {
	if logger == nil {
		logger = log.New(io.Discard, "", 0)
	}
	return &Server{hasher: h, workers: workers, logger: logger}
}

// Serve reads requests from r until EOF and writes responses to w. It
// returns once every accepted request has been answered.
func (s *Server) Serve(r io.Reader, w io.Writer) error {
	d := dispatch.New(s.workers)
	d.Start()
	defer d.Stop()

	var mu sync.Mutex
	enc := json.NewEncoder(w)
	write := func(resp models.Response) {
		mu.Lock()
		defer mu.Unlock()
		if err := enc.Encode(resp); err != nil {
			s.logger.Printf("serve: failed to write response %s: %v", resp.ID, err)
		}
	}

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), MaxLineSize)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}

		var req models.Request
		if err := json.Unmarshal(line, &req); err != nil {
			write(models.Response{Error: fmt.Sprintf("invalid request: %v", err)})
			continue
		}
		if req.ID == "" {
			req.ID = uuid.NewString()
		}

		if err := d.Submit(dispatch.JobFunc(func() { write(s.Handle(req)) })); err != nil {
			return err
		}
	}
	return scanner.Err()
}

// Handle runs one request. A fatal failure inside the call becomes the
// response's error instead of ending the process.
func (s *Server) Handle(req models.Request) models.Response {
	resp := models.Response{ID: req.ID}
	err := diag.Guard(req.Op, func() error {
		switch req.Op {
		case models.OpHash:
			hash := s.hasher.Hash(req.Password, req.Inputs)
			resp.Hash = &hash
		case models.OpVerify:
			match := s.hasher.Verify(req.Password, req.Hash, req.Inputs)
			resp.Match = &match
		default:
			return fmt.Errorf("%w: %q", ErrUnknownOp, req.Op)
		}
		return nil
	})
	if err != nil {
		resp.Error = err.Error()
	}
	return resp
}
