package main

import (
	"log"
	"os"

	echoapi "github.com/stemcert/backend/apps/api/echo"
	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/assessment"
	"github.com/stemcert/backend/core/staff"
	"github.com/stemcert/backend/core/trainer"
	emailsvc "github.com/stemcert/backend/services/email"
	logsvc "github.com/stemcert/backend/services/logger"
	"github.com/stemcert/backend/storage/csvstore"
)

func main() {
	stdLogger := log.New(os.Stdout, core.Conf.AppName+" : ", log.LstdFlags|log.Lshortfile)

	// set up services
	var logger core.Logger
	var mailSvc core.EmailService
	if core.Conf.Debug {
		logger = logsvc.NewConsoleLogger(stdLogger)
		mailSvc = emailsvc.NewConsoleService()
	} else {
		logger = logsvc.NewRollbarLogger(stdLogger, core.Conf)
		mailSvc = emailsvc.NewSendgridService(logger)
	}

	staffSvc := staff.NewService(
		csvstore.NewStaffRepository(core.Conf.Data.StaffFile, logger),
		logger,
	)
	trainerSvc := trainer.NewService(
		csvstore.NewTrainerDirectory(core.Conf.Data.TrainersFile, logger),
		logger,
	)
	assessSvc := assessment.NewService(
		csvstore.NewAssessmentRepository(core.Conf.Data.AssessmentsFile, logger),
		trainerSvc,
		mailSvc,
		logger,
	)

	// start API server
	app := echoapi.NewServer(
		&echoapi.Options{
			Addr:          core.Conf.Server.Addr,
			StaffSvc:      staffSvc,
			TrainerSvc:    trainerSvc,
			AssessmentSvc: assessSvc,
			Logger:        logger,
		},
	)
	app.Start()
}
