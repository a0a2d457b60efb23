package app

import (
	"context"
	"fmt"
	"time"

	"github.com/shirou/gopsutil/v3/host"
	"go.uber.org/zap"

	"github.com/winops-io/opsreport/internal/certs"
	"github.com/winops-io/opsreport/internal/config"
	"github.com/winops-io/opsreport/internal/directory"
	"github.com/winops-io/opsreport/internal/mail"
	"github.com/winops-io/opsreport/internal/probe"
	"github.com/winops-io/opsreport/internal/report"
)

// Classifier decides the collection route for one server
type Classifier interface {
	Classify(ctx context.Context, shortName, dnsName, localName string) probe.Status
}

// CertExpiryPipeline produces the certificate expiry report
type CertExpiryPipeline struct {
	cfg       *config.Config
	logger    *zap.Logger
	searcher  directory.Searcher
	prober    Classifier
	sender    mail.Sender
	localName string
	now       func() time.Time

	// collector factories, swappable in tests
	localCollector  func(server string) certs.Collector
	remoteCollector func(server, target string) certs.Collector
}

// NewCertExpiryPipeline creates the pipeline with its real
// collaborators. The local machine identity is resolved once here and
// passed into classification explicitly.
func NewCertExpiryPipeline(cfg *config.Config, logger *zap.Logger) (*CertExpiryPipeline, error) {
	info, err := host.Info()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve local host identity: %w", err)
	}
	localName := certs.ShortServerName(info.Hostname)

	logger.Info("Starting certificate expiry pipeline",
		zap.String("local_host", localName),
		zap.String("issuer_token", cfg.Certs.IssuerContains),
		zap.Int("threshold_days", cfg.Certs.ThresholdDays))

	return &CertExpiryPipeline{
		cfg:       cfg,
		logger:    logger,
		searcher:  directory.NewLDAPSearcher(cfg.Certs.LDAP, logger),
		prober:    probe.New(cfg.Certs.WinRM.Port, cfg.Certs.WinRM.PingTimeout),
		sender:    mail.New(cfg.Mail, logger),
		localName: localName,
		now:       time.Now,
		localCollector: func(server string) certs.Collector {
			return certs.NewLocalStore(server, logger)
		},
		remoteCollector: func(server, target string) certs.Collector {
			return certs.NewWinRMCollector(server, target, cfg.Certs.WinRM, logger)
		},
	}, nil
}

// Run executes the five pipeline stages. Per-host failures warn and
// skip; only directory acquisition failures abort the run. No email is
// sent when nothing matches the filter.
func (p *CertExpiryPipeline) Run(ctx context.Context) error {
	if err := p.cfg.ValidateCerts(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	style := report.LoadStylesheet(p.cfg.StyleFile, p.logger)

	computers, err := p.searcher.Computers(ctx)
	if err != nil {
		return fmt.Errorf("directory inventory failed: %w", err)
	}
	servers := directory.FilterServers(computers)
	p.logger.Info("Filtered server inventory",
		zap.Int("computers", len(computers)),
		zap.Int("servers", len(servers)))

	var collected []certs.Record
	for _, srv := range servers {
		records := p.collectFrom(ctx, srv)
		collected = append(collected, records...)
	}

	now := p.now()
	matched := certs.Filter(collected, p.cfg.Certs.IssuerContains, p.cfg.Certs.ThresholdDays, now)
	if len(matched) == 0 {
		p.logger.Info("No certificates matched the expiry filter, no report sent",
			zap.Int("collected", len(collected)))
		return nil
	}

	fragmentHTML, err := certs.BuildFragment(matched, now).HTML()
	if err != nil {
		return err
	}

	to, subject := mail.Resolve(p.cfg.Mail, p.cfg.Certs.Subject, p.cfg.TestMode)
	return p.sender.Send(mail.Message{
		To:       to,
		Subject:  subject,
		HTMLBody: report.BuildEmailBody(style, fragmentHTML),
	})
}

// collectFrom classifies one server and collects its certificates over
// the matching route. Every failure path warns and yields zero records.
func (p *CertExpiryPipeline) collectFrom(ctx context.Context, srv directory.Computer) []certs.Record {
	label := srv.DNSHostName
	if label == "" {
		label = srv.Name
	}

	status := p.prober.Classify(ctx, srv.Name, srv.DNSHostName, p.localName)

	var collector certs.Collector
	switch status {
	case probe.StatusLocal:
		collector = p.localCollector(label)
	case probe.StatusReachableManageable:
		collector = p.remoteCollector(label, label)
	case probe.StatusReachableUnmanageable:
		p.logger.Warn("Skipping server, WinRM unavailable",
			zap.String("server", srv.Name),
			zap.String("status", status.String()))
		return nil
	default:
		p.logger.Warn("Skipping server, unreachable",
			zap.String("server", srv.Name),
			zap.String("status", status.String()))
		return nil
	}

	records, err := collector.CollectLocalCertificates(ctx)
	if err != nil {
		p.logger.Warn("Certificate collection failed, skipping server",
			zap.String("server", srv.Name),
			zap.String("status", status.String()),
			zap.Error(err))
		return nil
	}
	return records
}
