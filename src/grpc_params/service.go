package grpc_params

import (
	"context"
	"math"
	"net"
	"strings"
	"time"

	"param-server/src/helpers"
	"param-server/src/interfaces"
	"param-server/src/logger"
	"param-server/src/metrics"
	"param-server/src/models"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

// ParamService mirrors the wire protocol over gRPC.
type ParamService struct {
	Config    *models.MConfig
	Estimator interfaces.IParameterEstimator
	Sources   func() []string
	Metrics   *metrics.Collector
	Logger    *logger.Logger
}

// NewParamService creates a new instance of ParamService. sources may be nil.
func NewParamService(
	cfg *models.MConfig,
	est interfaces.IParameterEstimator,
	sources func() []string,
	m *metrics.Collector,
	log *logger.Logger,
) *ParamService {
	return &ParamService{
		Config:    cfg,
		Estimator: est,
		Sources:   sources,
		Metrics:   m,
		Logger:    log,
	}
}

// -----------------------------------------------------------------------------

// Get takes {symbol, years?} and returns {symbol, years, mu, sigma, s0}.
func (s *ParamService) Get(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	symbol, years, err := s.decode(req)
	if err != nil {
		s.Metrics.ObserveRequest("grpc", err)
		return nil, toStatus(err)
	}

	params, err := s.Estimator.Estimate(ctx, symbol, years)
	s.Metrics.ObserveRequest("grpc", err)
	if err != nil {
		s.Logger.Info("gRPC: %s failed: %v", symbol, err)
		return nil, toStatus(err)
	}

	out, err := structpb.NewStruct(map[string]interface{}{
		"symbol": symbol,
		"years":  years,
		"mu":     params.Mu,
		"sigma":  params.Sigma,
		"s0":     params.S0,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ParamService) ListSources(ctx context.Context, req *structpb.Struct) (*structpb.Struct, error) {
	var names []interface{}
	if s.Sources != nil {
		for _, n := range s.Sources() {
			names = append(names, n)
		}
	}
	out, err := structpb.NewStruct(map[string]interface{}{
		"active":  s.Config.DataSource.Provider,
		"sources": names,
	})
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode response: %v", err)
	}
	return out, nil
}

// -----------------------------------------------------------------------------

func (s *ParamService) decode(req *structpb.Struct) (string, int, error) {
	fields := req.GetFields()

	symbol := strings.ToUpper(strings.TrimSpace(fields["symbol"].GetStringValue()))
	if symbol == "" {
		return "", 0, helpers.NewProtocolError("symbol is required")
	}

	years := s.Config.DefaultYears
	if v, ok := fields["years"]; ok {
		n, isNum := v.GetKind().(*structpb.Value_NumberValue)
		if !isNum || n.NumberValue != math.Trunc(n.NumberValue) || n.NumberValue <= 0 || n.NumberValue > math.MaxInt32 {
			return "", 0, helpers.NewProtocolError("years must be a positive integer")
		}
		years = int(n.NumberValue)
	}
	return symbol, years, nil
}

// -----------------------------------------------------------------------------

func toStatus(err error) error {
	msg := helpers.WireMessage(err)
	switch helpers.Category(err) {
	case "protocol":
		return status.Error(codes.InvalidArgument, msg)
	case "data_unavailable":
		return status.Error(codes.NotFound, msg)
	case "fetch":
		return status.Error(codes.Unavailable, msg)
	case "timeout":
		return status.Error(codes.DeadlineExceeded, msg)
	default:
		return status.Error(codes.Internal, msg)
	}
}

// -----------------------------------------------------------------------------

// NewServer builds a *grpc.Server with the service registered and a logging
// interceptor installed.
func NewServer(svc *ParamService) *grpc.Server {
	srv := grpc.NewServer(grpc.ChainUnaryInterceptor(func(ctx context.Context, req interface{}, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (interface{}, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		svc.Logger.Debug("gRPC %s (%s) %v", info.FullMethod, time.Since(start), status.Code(err))
		return resp, err
	}))
	srv.RegisterService(&ServiceDesc, svc)
	return srv
}

// -----------------------------------------------------------------------------

// Serve runs srv on addr until ctx is done, then stops gracefully.
func Serve(ctx context.Context, srv *grpc.Server, addr string, log *logger.Logger) error {
	lis, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}

	stop := context.AfterFunc(ctx, srv.GracefulStop)
	defer stop()

	log.Info("gRPC server listening on %s", lis.Addr())
	if err := srv.Serve(lis); err != nil && ctx.Err() == nil {
		return err
	}
	return nil
}
