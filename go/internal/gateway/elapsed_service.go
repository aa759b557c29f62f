package gateway

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"
	"github.com/mcdev12/turntimer/go/internal/ledger"
	"github.com/mcdev12/turntimer/go/internal/turnclock"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	// ElapsedServiceName is the fully-qualified name of the ElapsedService
	ElapsedServiceName = "turntimer.v1.ElapsedService"

	ElapsedServiceTotalElapsedProcedure       = "/turntimer.v1.ElapsedService/TotalElapsed"
	ElapsedServiceParticipantElapsedProcedure = "/turntimer.v1.ElapsedService/ParticipantElapsed"
	ElapsedServiceFormatTimeProcedure         = "/turntimer.v1.ElapsedService/FormatTime"
)

var (
	errEncounterRequired   = errors.New("encounter_id is required")
	errParticipantRequired = errors.New("participant_id is required")
)

// ElapsedService exposes the elapsed-time queries over Connect. Messages are
// protobuf well-known types, so no generated code is needed.
type ElapsedService struct {
	provider SnapshotProvider
}

// NewElapsedService creates the Connect query service
func NewElapsedService(provider SnapshotProvider) *ElapsedService {
	return &ElapsedService{provider: provider}
}

// TotalElapsed takes an encounter ID and returns its accrued active seconds
func (s *ElapsedService) TotalElapsed(ctx context.Context, req *connect.Request[wrapperspb.StringValue]) (*connect.Response[wrapperspb.DoubleValue], error) {
	encounterID := req.Msg.GetValue()
	if encounterID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEncounterRequired)
	}

	total, err := s.provider.TotalElapsed(ctx, ledger.EncounterID(encounterID))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(wrapperspb.Double(total)), nil
}

// ParticipantElapsed takes {encounter_id, participant_id} and returns the
// participant's seconds including any live share
func (s *ElapsedService) ParticipantElapsed(ctx context.Context, req *connect.Request[structpb.Struct]) (*connect.Response[wrapperspb.DoubleValue], error) {
	fields := req.Msg.GetFields()
	encounterID := fields["encounter_id"].GetStringValue()
	participantID := fields["participant_id"].GetStringValue()
	if encounterID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errEncounterRequired)
	}
	if participantID == "" {
		return nil, connect.NewError(connect.CodeInvalidArgument, errParticipantRequired)
	}

	secs, err := s.provider.ParticipantElapsed(ctx, ledger.EncounterID(encounterID), ledger.ParticipantID(participantID))
	if err != nil {
		return nil, connect.NewError(connect.CodeInternal, err)
	}
	return connect.NewResponse(wrapperspb.Double(secs)), nil
}

// FormatTime renders seconds as HH:MM:SS
func (s *ElapsedService) FormatTime(_ context.Context, req *connect.Request[wrapperspb.DoubleValue]) (*connect.Response[wrapperspb.StringValue], error) {
	return connect.NewResponse(wrapperspb.String(turnclock.FormatTime(req.Msg.GetValue()))), nil
}

// Handler builds the HTTP handler and the path prefix it is mounted on
func (s *ElapsedService) Handler(opts ...connect.HandlerOption) (string, http.Handler) {
	total := connect.NewUnaryHandler(ElapsedServiceTotalElapsedProcedure, s.TotalElapsed, opts...)
	participant := connect.NewUnaryHandler(ElapsedServiceParticipantElapsedProcedure, s.ParticipantElapsed, opts...)
	format := connect.NewUnaryHandler(ElapsedServiceFormatTimeProcedure, s.FormatTime, opts...)

	return "/" + ElapsedServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case ElapsedServiceTotalElapsedProcedure:
			total.ServeHTTP(w, r)
		case ElapsedServiceParticipantElapsedProcedure:
			participant.ServeHTTP(w, r)
		case ElapsedServiceFormatTimeProcedure:
			format.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// ElapsedClient calls ElapsedService
type ElapsedClient struct {
	totalElapsed       *connect.Client[wrapperspb.StringValue, wrapperspb.DoubleValue]
	participantElapsed *connect.Client[structpb.Struct, wrapperspb.DoubleValue]
	formatTime         *connect.Client[wrapperspb.DoubleValue, wrapperspb.StringValue]
}

// NewElapsedClient creates a client for the service hosted at baseURL
func NewElapsedClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) *ElapsedClient {
	return &ElapsedClient{
		totalElapsed:       connect.NewClient[wrapperspb.StringValue, wrapperspb.DoubleValue](httpClient, baseURL+ElapsedServiceTotalElapsedProcedure, opts...),
		participantElapsed: connect.NewClient[structpb.Struct, wrapperspb.DoubleValue](httpClient, baseURL+ElapsedServiceParticipantElapsedProcedure, opts...),
		formatTime:         connect.NewClient[wrapperspb.DoubleValue, wrapperspb.StringValue](httpClient, baseURL+ElapsedServiceFormatTimeProcedure, opts...),
	}
}

func (c *ElapsedClient) TotalElapsed(ctx context.Context, encounterID string) (float64, error) {
	resp, err := c.totalElapsed.CallUnary(ctx, connect.NewRequest(wrapperspb.String(encounterID)))
	if err != nil {
		return 0, err
	}
	return resp.Msg.GetValue(), nil
}

func (c *ElapsedClient) ParticipantElapsed(ctx context.Context, encounterID, participantID string) (float64, error) {
	msg, err := structpb.NewStruct(map[string]any{
		"encounter_id":   encounterID,
		"participant_id": participantID,
	})
	if err != nil {
		return 0, err
	}
	resp, err := c.participantElapsed.CallUnary(ctx, connect.NewRequest(msg))
	if err != nil {
		return 0, err
	}
	return resp.Msg.GetValue(), nil
}

func (c *ElapsedClient) FormatTime(ctx context.Context, seconds float64) (string, error) {
	resp, err := c.formatTime.CallUnary(ctx, connect.NewRequest(wrapperspb.Double(seconds)))
	if err != nil {
		return "", err
	}
	return resp.Msg.GetValue(), nil
}
