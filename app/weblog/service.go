package weblog

import (
	"context"
	"net/http"

	"go.uber.org/zap"

	"github.com/km-arc/go-beans/framework/container"
	"github.com/km-arc/go-beans/framework/foundation"
)

// LogDemoService is a singleton. It never holds a RequestLogger, only a
// provider that yields the current request's logger.
type LogDemoService struct {
	loggers container.ObjectProvider[*RequestLogger]
}

func NewLogDemoService(loggers container.ObjectProvider[*RequestLogger]) *LogDemoService {
	return &LogDemoService{loggers: loggers}
}

func (s *LogDemoService) Log(ctx context.Context, id string) error {
	l, err := s.loggers.Get(ctx)
	if err != nil {
		return err
	}
	l.Log("service id = " + id)
	return nil
}

// LogDemoController serves GET /log-demo.
type LogDemoController struct {
	foundation.Controller
	service *LogDemoService
	loggers container.ObjectProvider[*RequestLogger]
	log     *zap.Logger
}

func NewLogDemoController(service *LogDemoService, loggers container.ObjectProvider[*RequestLogger], log *zap.Logger) *LogDemoController {
	return &LogDemoController{service: service, loggers: loggers, log: log}
}

type logDemoResult struct {
	UUID       string   `json:"uuid"`
	RequestURL string   `json:"request_url"`
	Lines      []string `json:"lines"`
}

// LogDemo logs from the controller and the service. Both lines carry the
// same uuid because both see the same request-scoped logger.
func (c *LogDemoController) LogDemo(w http.ResponseWriter, r *http.Request) {
	req, res := c.Request(r), c.Response(w)
	ctx := r.Context()

	l, err := c.loggers.Get(ctx)
	if err != nil {
		c.log.Error("log demo", zap.Error(err))
		res.ServerError()
		return
	}
	l.SetRequestURL(req.URL())
	l.Log("controller test")

	if err := c.service.Log(ctx, "testId"); err != nil {
		c.log.Error("log demo", zap.Error(err))
		res.ServerError()
		return
	}

	res.Success(logDemoResult{UUID: l.ID, RequestURL: req.URL(), Lines: l.Lines()})
}
