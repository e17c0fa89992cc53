package server

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"

	"github.com/joseph-ayodele/po-tracker/internal/common"
	"github.com/joseph-ayodele/po-tracker/internal/partnumber"
	"github.com/joseph-ayodele/po-tracker/internal/record"
	"github.com/joseph-ayodele/po-tracker/internal/repository"
)

// DefaultSuggestions is how many catalog suggestions ResolvePartNumber returns
// when the request does not say.
const DefaultSuggestions = 5

type ExtractionService struct {
	assembler *record.Assembler
	resolver  *partnumber.Resolver
	repo      repository.RecordRepository
	logger    *slog.Logger
}

// NewExtractionService wires the service. repo may be nil, in which case
// store requests and GetRecord fail with FailedPrecondition.
func NewExtractionService(assembler *record.Assembler, resolver *partnumber.Resolver, repo repository.RecordRepository, logger *slog.Logger) *ExtractionService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExtractionService{assembler: assembler, resolver: resolver, repo: repo, logger: logger}
}

// loggerFor prefers the request-scoped logger set by the interceptor.
func (s *ExtractionService) loggerFor(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(common.ContextKeyLogger).(*slog.Logger); ok && l != nil {
		return l
	}
	return s.logger
}

// toStruct converts any JSON-marshalable value into a Struct.
func toStruct(v any) (*structpb.Struct, error) {
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := &structpb.Struct{}
	if err := protojson.Unmarshal(b, out); err != nil {
		return nil, err
	}
	return out, nil
}

func stringField(in *structpb.Struct, name string) string {
	return strings.TrimSpace(in.GetFields()[name].GetStringValue())
}

// Extract assembles a record from {text, source?, store?}. The response is
// {record, id?}; id is set when the record was stored.
func (s *ExtractionService) Extract(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	logger := s.loggerFor(ctx)
	text := req.GetFields()["text"].GetStringValue()
	if strings.TrimSpace(text) == "" {
		logger.Error("extract request missing text")
		return nil, common.InvalidArgumentError("text is required")
	}
	source := stringField(req, "source")
	if source == "" {
		source = "grpc"
	}
	store := req.GetFields()["store"].GetBoolValue()
	if store && s.repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "record store is not configured")
	}

	rec := s.assembler.Assemble(text)
	if err := record.Validate(rec); err != nil {
		logger.Error("assembled record violates contract", "source", source, "error", err)
		return nil, common.InternalError("assembled record violates contract")
	}

	resp := map[string]any{"record": rec}
	if store {
		saved, err := s.repo.Save(ctx, source, rec)
		if err != nil {
			logger.Error("failed to store record", "source", source, "error", err)
			return nil, common.ToStatus(err)
		}
		resp["id"] = saved.ID.String()
	}

	out, err := toStruct(resp)
	if err != nil {
		return nil, common.InternalErrorf("encode record: %v", err)
	}
	logger.Info("extract ok", "source", source, "stored", store)
	return out, nil
}

// GetRecord returns a stored record as {id, source, created_at, record}.
func (s *ExtractionService) GetRecord(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	if s.repo == nil {
		return nil, status.Error(codes.FailedPrecondition, "record store is not configured")
	}
	raw := stringField(req, "id")
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, common.InvalidArgumentErrorf("id must be a UUID: %q", raw)
	}
	stored, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, common.ToStatus(err)
	}
	out, err := toStruct(stored)
	if err != nil {
		return nil, common.InternalErrorf("encode record: %v", err)
	}
	return out, nil
}

// ResolvePartNumber checks {part_number, suggestions?} against the catalog and
// returns {result, suggestions}.
func (s *ExtractionService) ResolvePartNumber(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	raw := stringField(req, "part_number")
	if raw == "" {
		return nil, common.InvalidArgumentError("part_number is required")
	}
	n := int(req.GetFields()["suggestions"].GetNumberValue())
	if n <= 0 {
		n = DefaultSuggestions
	}
	res := s.resolver.Resolve(raw)
	sugg := s.resolver.Suggestions(raw, n)
	if sugg == nil {
		sugg = []partnumber.Suggestion{}
	}
	s.loggerFor(ctx).Debug("part number resolved", "part_number", raw, "method", res.Method)

	out, err := toStruct(map[string]any{"result": res, "suggestions": sugg})
	if err != nil {
		return nil, common.InternalErrorf("encode result: %v", err)
	}
	return out, nil
}
