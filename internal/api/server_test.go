package api

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"github.com/lodecraft/lode-verify-go/internal/board"
	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/ledger"
	"github.com/lodecraft/lode-verify-go/internal/protocol"
	"github.com/lodecraft/lode-verify-go/internal/store"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

type testEnv struct {
	db      *store.MemoryDB
	led     *ledger.MemoryLedger
	clock   *protocol.FakeClock
	handler http.Handler
	ids     [4]u256.Word
	setup   uint16
	verdict bool
}

type staticTokens string

func (s staticTokens) Token() (string, error) { return string(s), nil }

// newTestEnv wires a server over four minted puzzles whose start and exit
// share the bottom row of quadrant 2, so the zero-move solution wins.
func newTestEnv(t *testing.T, tokens TokenSource) *testEnv {
	t.Helper()
	e := &testEnv{
		db:    store.NewMemoryDB(),
		led:   ledger.NewMemoryLedger(),
		clock: protocol.NewFakeClock(time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)),
	}

	d := &codec.Descriptor{
		Start: board.Point{X: 0, Y: board.SingleHeight - 1},
		Exit:  board.Point{X: 0, Y: board.SingleHeight - 1},
	}
	words := codec.EncodeDescriptor(d)
	for k := 0; k < 4; k++ {
		e.ids[k] = u256.FromUint64(uint64(k + 1))
		if err := e.db.PutPuzzle(e.ids[k], words); err != nil {
			t.Fatalf("PutPuzzle: %v", err)
		}
	}
	e.setup = codec.PackSetupData(codec.Setup{StartQuadrant: 2, ExitQuadrant: 2})

	proto := protocol.New(protocol.Config{
		Clock:        e.clock,
		Ledger:       e.led,
		Fetch:        e.db,
		Log:          e.db,
		Operator:     "operator",
		RequiredBond: decimal.NewFromInt(100),
		CompDuration: time.Hour,
		TestDuration: 15 * time.Minute,
		Verify: func([4]u256.Word, uint16, []u256.Word) bool {
			return e.verdict
		},
	})

	quiet := log.New(io.Discard, "", 0)
	e.handler = NewServer(e.db, proto, "operator", tokens, quiet).Routes()
	return e
}

func (e *testEnv) do(t *testing.T, method, path string, body interface{}, token string) *httptest.ResponseRecorder {
	t.Helper()
	var buf io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request: %v", err)
		}
		buf = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, buf)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	return rr
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder, dst interface{}) {
	t.Helper()
	if err := json.NewDecoder(rr.Body).Decode(dst); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
}

func encodeMoves(t *testing.T, moves []codec.Move) []u256.Word {
	t.Helper()
	words, err := codec.EncodeSolution(moves)
	if err != nil {
		t.Fatalf("EncodeSolution: %v", err)
	}
	return words
}

func TestHealthEndpoints(t *testing.T) {
	e := newTestEnv(t, nil)
	for _, path := range []string{"/health", "/health/live", "/health/ready"} {
		if rr := e.do(t, http.MethodGet, path, nil, ""); rr.Code != http.StatusOK {
			t.Errorf("GET %s = %d, want 200", path, rr.Code)
		}
	}
}

func TestVerifyEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)

	rr := e.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{
		PuzzleIDs: e.ids,
		SetupData: e.setup,
		Solution:  encodeMoves(t, nil),
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("verify = %d: %s", rr.Code, rr.Body.String())
	}
	var resp VerifyResponse
	decodeBody(t, rr, &resp)
	if !resp.Valid || resp.Failure != "" || resp.Moves != 0 {
		t.Errorf("verify response = %+v", resp)
	}
	if got := rr.Header().Get("X-Verifier-Version"); got != VerifierVersion {
		t.Errorf("version header = %q", got)
	}
}

func TestVerifyEndpointFailureTag(t *testing.T) {
	e := newTestEnv(t, nil)
	right := []codec.Move{{Kind: codec.MoveKindMove, Dir: codec.DirRight}}
	rr := e.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{
		PuzzleIDs: e.ids,
		SetupData: e.setup,
		Solution:  encodeMoves(t, right),
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("verify = %d: %s", rr.Code, rr.Body.String())
	}
	var resp VerifyResponse
	decodeBody(t, rr, &resp)
	if resp.Valid || resp.Failure != "not_at_exit" || resp.Moves != 1 {
		t.Errorf("verify response = %+v", resp)
	}
}

func TestVerifyEndpointValidation(t *testing.T) {
	e := newTestEnv(t, nil)

	if rr := e.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{PuzzleIDs: e.ids}, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("empty solution = %d, want 400", rr.Code)
	}

	missing := e.ids
	missing[0] = u256.FromUint64(9999)
	rr := e.do(t, http.MethodPost, "/api/v1/verify", VerifyRequest{
		PuzzleIDs: missing,
		SetupData: e.setup,
		Solution:  encodeMoves(t, nil),
	}, "")
	if rr.Code != http.StatusNotFound {
		t.Errorf("missing puzzle = %d, want 404", rr.Code)
	}
}

func TestGetPuzzle(t *testing.T) {
	e := newTestEnv(t, nil)

	rr := e.do(t, http.MethodGet, "/api/v1/puzzles/1", nil, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("get puzzle = %d: %s", rr.Code, rr.Body.String())
	}
	var resp PuzzleResponse
	decodeBody(t, rr, &resp)
	if resp.ID != e.ids[0] {
		t.Errorf("puzzle id = %s, want 1", resp.ID)
	}

	// Hex spelling of the same id.
	if rr := e.do(t, http.MethodGet, "/api/v1/puzzles/0x1", nil, ""); rr.Code != http.StatusOK {
		t.Errorf("hex id = %d, want 200", rr.Code)
	}

	if rr := e.do(t, http.MethodGet, "/api/v1/puzzles/9999", nil, ""); rr.Code != http.StatusNotFound {
		t.Errorf("missing puzzle = %d, want 404", rr.Code)
	}
	if rr := e.do(t, http.MethodGet, "/api/v1/puzzles/abc", nil, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("malformed id = %d, want 400", rr.Code)
	}
}

func TestMintPuzzle(t *testing.T) {
	e := newTestEnv(t, nil)
	id := u256.FromUint64(77)
	var words [4]u256.Word
	words[0] = u256.FromUint64(123)

	rr := e.do(t, http.MethodPost, "/api/v1/puzzles", MintRequest{ID: id, Words: words}, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("mint = %d: %s", rr.Code, rr.Body.String())
	}
	got, err := e.db.GetPuzzle(id)
	if err != nil {
		t.Fatalf("GetPuzzle: %v", err)
	}
	if got != words {
		t.Errorf("stored words = %v, want %v", got, words)
	}
}

func TestAdminAuth(t *testing.T) {
	e := newTestEnv(t, staticTokens("sekrit"))
	body := MintRequest{ID: u256.FromUint64(9)}

	rr := e.do(t, http.MethodPost, "/api/v1/puzzles", body, "")
	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("no token = %d, want 401", rr.Code)
	}
	if got := rr.Header().Get("X-Error-Type"); got != ErrTypeUnauthorized {
		t.Errorf("error type header = %q", got)
	}

	if rr := e.do(t, http.MethodPost, "/api/v1/puzzles", body, "wrong"); rr.Code != http.StatusUnauthorized {
		t.Errorf("wrong token = %d, want 401", rr.Code)
	}
	if rr := e.do(t, http.MethodPost, "/api/v1/puzzles", body, "sekrit"); rr.Code != http.StatusCreated {
		t.Errorf("good token = %d, want 201", rr.Code)
	}

	// Non-admin endpoints stay open.
	if rr := e.do(t, http.MethodGet, "/api/v1/competition", nil, ""); rr.Code != http.StatusOK {
		t.Errorf("status without token = %d, want 200", rr.Code)
	}
}

func (e *testEnv) startCompetition(t *testing.T) {
	t.Helper()
	rr := e.do(t, http.MethodPost, "/api/v1/competition/start", StartRequest{
		PuzzleIDs: e.ids,
		SetupData: e.setup,
		Prize:     decimal.NewFromInt(500),
	}, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("start competition = %d: %s", rr.Code, rr.Body.String())
	}
}

func TestCompetitionLifecycle(t *testing.T) {
	e := newTestEnv(t, nil)
	e.startCompetition(t)

	solution := encodeMoves(t, nil)
	hash := protocol.SolutionHash(solution)
	e.led.Deposit("alice", decimal.NewFromInt(100))

	rr := e.do(t, http.MethodPost, "/api/v1/competition/commit", CommitRequest{
		Submitter: "alice",
		Hash:      hex.EncodeToString(hash[:]),
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("commit = %d: %s", rr.Code, rr.Body.String())
	}

	rr = e.do(t, http.MethodPost, "/api/v1/competition/reveal", RevealRequest{
		Submitter: "alice",
		Solution:  solution,
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("reveal = %d: %s", rr.Code, rr.Body.String())
	}
	var st StatusResponse
	decodeBody(t, rr, &st)
	if !st.Revealed || st.Submitter != "alice" {
		t.Errorf("status after reveal = %+v", st)
	}

	e.clock.Advance(2 * time.Hour)
	if rr := e.do(t, http.MethodPost, "/api/v1/competition/award", nil, ""); rr.Code != http.StatusOK {
		t.Fatalf("award = %d: %s", rr.Code, rr.Body.String())
	}
	// Bond returned plus the prize.
	if got := e.led.AvailableBond("alice"); !got.Equal(decimal.NewFromInt(600)) {
		t.Errorf("winner balance = %s, want 600", got)
	}
}

func TestCommitValidation(t *testing.T) {
	e := newTestEnv(t, nil)
	e.startCompetition(t)

	rr := e.do(t, http.MethodPost, "/api/v1/competition/commit", CommitRequest{Hash: "abcd"}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("missing submitter = %d, want 400", rr.Code)
	}
	rr = e.do(t, http.MethodPost, "/api/v1/competition/commit", CommitRequest{
		Submitter: "alice",
		Hash:      "not-hex",
	}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("bad hash = %d, want 400", rr.Code)
	}
}

func TestCommitInsufficientBond(t *testing.T) {
	e := newTestEnv(t, nil)
	e.startCompetition(t)

	hash := protocol.SolutionHash(nil)
	rr := e.do(t, http.MethodPost, "/api/v1/competition/commit", CommitRequest{
		Submitter: "pauper",
		Hash:      hex.EncodeToString(hash[:]),
	}, "")
	if rr.Code != http.StatusPaymentRequired {
		t.Errorf("unfunded commit = %d, want 402", rr.Code)
	}
}

func TestChallengeSlashes(t *testing.T) {
	e := newTestEnv(t, nil) // verdict stays false: submission is invalid
	e.startCompetition(t)

	solution := encodeMoves(t, nil)
	hash := protocol.SolutionHash(solution)
	e.led.Deposit("alice", decimal.NewFromInt(100))
	if rr := e.do(t, http.MethodPost, "/api/v1/competition/commit", CommitRequest{
		Submitter: "alice",
		Hash:      hex.EncodeToString(hash[:]),
	}, ""); rr.Code != http.StatusOK {
		t.Fatalf("commit = %d", rr.Code)
	}
	if rr := e.do(t, http.MethodPost, "/api/v1/competition/reveal", RevealRequest{
		Submitter: "alice",
		Solution:  solution,
	}, ""); rr.Code != http.StatusOK {
		t.Fatalf("reveal = %d", rr.Code)
	}

	e.clock.Advance(time.Hour + time.Minute)
	rr := e.do(t, http.MethodPost, "/api/v1/competition/challenge", ChallengeRequest{Challenger: "carol"}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("challenge = %d: %s", rr.Code, rr.Body.String())
	}
	if got := e.led.AvailableBond("carol"); !got.Equal(decimal.NewFromInt(100)) {
		t.Errorf("challenger balance = %s, want 100", got)
	}
}

func TestChallengeConflictStatus(t *testing.T) {
	e := newTestEnv(t, nil)
	e.startCompetition(t)
	// Still inside the submission window.
	rr := e.do(t, http.MethodPost, "/api/v1/competition/challenge", ChallengeRequest{Challenger: "carol"}, "")
	if rr.Code != http.StatusConflict {
		t.Errorf("early challenge = %d, want 409", rr.Code)
	}
}

func TestScanEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)
	right := []codec.Move{{Kind: codec.MoveKindMove, Dir: codec.DirRight}}

	rr := e.do(t, http.MethodPost, "/api/v1/scan", map[string]interface{}{
		"puzzle_ids": e.ids,
		"setup_data": e.setup,
		"candidates": [][]u256.Word{encodeMoves(t, right), encodeMoves(t, nil)},
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("scan = %d: %s", rr.Code, rr.Body.String())
	}
	var resp ScanResponse
	decodeBody(t, rr, &resp)
	if len(resp.Verdicts) != 2 || resp.Summary.ValidFound != 1 || resp.Summary.FirstValid != 1 {
		t.Errorf("scan response = %+v", resp)
	}

	if rr := e.do(t, http.MethodPost, "/api/v1/scan", map[string]interface{}{
		"puzzle_ids": e.ids,
	}, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("scan without candidates = %d, want 400", rr.Code)
	}
}

func TestScriptBuildEndpoint(t *testing.T) {
	e := newTestEnv(t, nil)

	rr := e.do(t, http.MethodPost, "/api/v1/script/build", ScriptBuildRequest{
		Source: `move(RIGHT); mine(DOWN); log("done");`,
	}, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("script build = %d: %s", rr.Code, rr.Body.String())
	}
	var resp ScriptBuildResponse
	decodeBody(t, rr, &resp)
	if len(resp.Moves) != 2 || len(resp.Words) == 0 {
		t.Errorf("script response = %+v", resp)
	}
	if len(resp.Logs) != 1 || resp.Logs[0].Message != "done" {
		t.Errorf("script logs = %+v", resp.Logs)
	}

	rr = e.do(t, http.MethodPost, "/api/v1/script/build", ScriptBuildRequest{Source: `move(`}, "")
	if rr.Code != http.StatusBadRequest {
		t.Errorf("broken script = %d, want 400", rr.Code)
	}
	if got := rr.Header().Get("X-Error-Type"); got != ErrTypeScript {
		t.Errorf("error type header = %q", got)
	}

	if rr := e.do(t, http.MethodPost, "/api/v1/script/build", ScriptBuildRequest{}, ""); rr.Code != http.StatusBadRequest {
		t.Errorf("empty source = %d, want 400", rr.Code)
	}
}

func TestInvalidJSONBody(t *testing.T) {
	e := newTestEnv(t, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/verify", bytes.NewReader([]byte("{not json")))
	rr := httptest.NewRecorder()
	e.handler.ServeHTTP(rr, req)
	if rr.Code != http.StatusBadRequest {
		t.Fatalf("invalid body = %d, want 400", rr.Code)
	}
	var verr VerifierError
	decodeBody(t, rr, &verr)
	if verr.Type != ErrTypeValidation {
		t.Errorf("error type = %q, want %q", verr.Type, ErrTypeValidation)
	}
}
