// Package app wires configuration, acquisition, transform and delivery
// into the two report pipelines.
package app

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/winops-io/opsreport/internal/config"
	"github.com/winops-io/opsreport/internal/mail"
	"github.com/winops-io/opsreport/internal/rds"
	"github.com/winops-io/opsreport/internal/report"
)

// LicensePipeline produces the RDS license report
type LicensePipeline struct {
	cfg    *config.Config
	logger *zap.Logger
	source rds.LicenseSource
	sender mail.Sender
}

// NewLicensePipeline creates the pipeline with its real collaborators
func NewLicensePipeline(cfg *config.Config, logger *zap.Logger) *LicensePipeline {
	return &LicensePipeline{
		cfg:    cfg,
		logger: logger,
		source: rds.NewSource(cfg.RDS.LicenseServer, logger),
		sender: mail.New(cfg.Mail, logger),
	}
}

// Run executes the five pipeline stages. The report is sent even when no
// keypacks or licenses exist; license administrators treat the empty
// report as the heartbeat.
func (p *LicensePipeline) Run(ctx context.Context) error {
	style := report.LoadStylesheet(p.cfg.StyleFile, p.logger)

	packs, err := p.source.KeyPacks(ctx)
	if err != nil {
		return fmt.Errorf("keypack query failed: %w", err)
	}
	licenses, err := p.source.IssuedLicenses(ctx)
	if err != nil {
		return fmt.Errorf("issued-license query failed: %w", err)
	}

	packHTML, err := rds.BuildKeyPackFragment(packs).HTML()
	if err != nil {
		return err
	}
	licenseHTML, err := rds.BuildLicenseFragment(licenses, packs).HTML()
	if err != nil {
		return err
	}

	to, subject := mail.Resolve(p.cfg.Mail, p.cfg.RDS.Subject, p.cfg.TestMode)
	return p.sender.Send(mail.Message{
		To:       to,
		Subject:  subject,
		HTMLBody: report.BuildEmailBody(style, packHTML, licenseHTML),
	})
}
