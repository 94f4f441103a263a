package api

import (
	"encoding/hex"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/lodecraft/lode-verify-go/internal/codec"
	"github.com/lodecraft/lode-verify-go/internal/scan"
	"github.com/lodecraft/lode-verify-go/internal/scripting"
	"github.com/lodecraft/lode-verify-go/internal/sim"
	"github.com/lodecraft/lode-verify-go/internal/store"
	"github.com/lodecraft/lode-verify-go/internal/u256"
)

func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		s.errors.HandleValidationError(w, r, "body", "invalid JSON request body")
		return false
	}
	return true
}

// handleVerify runs the simulator over one encoded solution.
func (s *Server) handleVerify(w http.ResponseWriter, r *http.Request) {
	var req VerifyRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Solution) == 0 {
		s.errors.HandleValidationError(w, r, "solution", "solution words are required")
		return
	}

	resp := VerifyResponse{VerifierVersion: VerifierVersion}
	if sol, err := codec.DecodeSolution(req.Solution); err == nil {
		resp.Moves = len(sol.Moves)
	}
	if err := sim.Verify(s.db, req.PuzzleIDs, req.SetupData, req.Solution); err != nil {
		if tag := sim.Tag(err); tag != "" {
			resp.Failure = tag
		} else if errors.Is(err, store.ErrPuzzleNotFound) {
			s.errors.HandleError(w, r, err, http.StatusNotFound)
			return
		} else {
			// Decode failures are malformed input, not simulation verdicts.
			s.errors.HandleError(w, r, err, http.StatusBadRequest)
			return
		}
	} else {
		resp.Valid = true
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// handleMintPuzzle registers a descriptor. Registration is first-write-wins.
func (s *Server) handleMintPuzzle(w http.ResponseWriter, r *http.Request) {
	var req MintRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.db.PutPuzzle(req.ID, req.Words); err != nil {
		s.errors.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusCreated, PuzzleResponse{ID: req.ID, Words: req.Words})
}

// handleGetPuzzle returns the stored descriptor words for an id. The id path
// segment accepts decimal or 0x-prefixed hex.
func (s *Server) handleGetPuzzle(w http.ResponseWriter, r *http.Request) {
	raw := chi.URLParam(r, "id")
	id, err := parseWord(raw)
	if err != nil {
		s.errors.HandleValidationError(w, r, "id", "puzzle id must be a decimal or 0x-hex integer")
		return
	}
	words, err := s.db.GetPuzzle(id)
	if err != nil {
		s.errors.HandleError(w, r, err, protocolStatus(err))
		return
	}
	s.writeJSON(w, http.StatusOK, PuzzleResponse{ID: id, Words: words})
}

func parseWord(s string) (u256.Word, error) {
	if len(s) > 2 && (s[:2] == "0x" || s[:2] == "0X") {
		return u256.FromHex(s)
	}
	return u256.FromDecimal(s)
}

// handleStartCompetition opens a new competition.
func (s *Server) handleStartCompetition(w http.ResponseWriter, r *http.Request) {
	var req StartRequest
	if !s.decode(w, r, &req) {
		return
	}
	comp, err := s.proto.StartCompetition(s.operator, req.PuzzleIDs, req.SetupData, req.Prize)
	if err != nil {
		s.errors.HandleProtocolError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusCreated, comp)
}

// handleCommit records a submitter's solution hash.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req CommitRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Submitter == "" {
		s.errors.HandleValidationError(w, r, "submitter", "submitter is required")
		return
	}
	raw, err := hex.DecodeString(req.Hash)
	if err != nil || len(raw) != 32 {
		s.errors.HandleValidationError(w, r, "hash", "hash must be 32 bytes of hex")
		return
	}
	var h [32]byte
	copy(h[:], raw)
	if err := s.proto.Commit(req.Submitter, h); err != nil {
		s.errors.HandleProtocolError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

// handleReveal discloses a committed solution.
func (s *Server) handleReveal(w http.ResponseWriter, r *http.Request) {
	var req RevealRequest
	if !s.decode(w, r, &req) {
		return
	}
	if err := s.proto.Reveal(req.Submitter, req.Solution); err != nil {
		s.errors.HandleProtocolError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

// handleChallenge disputes the outstanding submission during the test window.
func (s *Server) handleChallenge(w http.ResponseWriter, r *http.Request) {
	var req ChallengeRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Challenger == "" {
		s.errors.HandleValidationError(w, r, "challenger", "challenger is required")
		return
	}
	if err := s.proto.TakePlayerBond(req.Challenger); err != nil {
		s.errors.HandleProtocolError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

// handleAward settles an unchallenged submission after the test window.
func (s *Server) handleAward(w http.ResponseWriter, r *http.Request) {
	if err := s.proto.UnlockBondAwardPrize(); err != nil {
		s.errors.HandleProtocolError(w, r, err)
		return
	}
	s.writeJSON(w, http.StatusOK, s.status())
}

// handleCompetitionStatus returns the protocol snapshot.
func (s *Server) handleCompetitionStatus(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, s.status())
}

func (s *Server) status() StatusResponse {
	return StatusResponse{Status: s.proto.CurrentStatus(), VerifierVersion: VerifierVersion}
}

// handleScan batch-verifies candidate solutions.
func (s *Server) handleScan(w http.ResponseWriter, r *http.Request) {
	var req scan.Request
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Candidates) == 0 {
		s.errors.HandleValidationError(w, r, "candidates", "at least one candidate is required")
		return
	}
	result, err := s.scanner.Scan(r.Context(), s.db, req)
	if err != nil {
		s.errors.HandleError(w, r, err, http.StatusInternalServerError)
		return
	}
	s.writeJSON(w, http.StatusOK, ScanResponse{
		Verdicts:        result.Verdicts,
		Summary:         result.Summary,
		VerifierVersion: VerifierVersion,
	})
}

// handleScriptBuild runs a move-builder script and returns the encoding.
func (s *Server) handleScriptBuild(w http.ResponseWriter, r *http.Request) {
	var req ScriptBuildRequest
	if !s.decode(w, r, &req) {
		return
	}
	if req.Source == "" {
		s.errors.HandleValidationError(w, r, "source", "script source is required")
		return
	}
	vm := scripting.NewVM()
	moves, words, err := vm.EncodeWords(req.Source)
	if err != nil {
		verr := NewError(ErrTypeScript, "script failed").WithCause(err).Build()
		s.errors.HandleError(w, r, verr, http.StatusBadRequest)
		return
	}
	s.writeJSON(w, http.StatusOK, ScriptBuildResponse{
		Moves:           moveStrings(moves),
		Words:           words,
		Logs:            vm.Logs(),
		VerifierVersion: VerifierVersion,
	})
}
