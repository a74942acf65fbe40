package main

import (
	"log"
	"os"

	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/staff"
	logsvc "github.com/stemcert/backend/services/logger"
	"github.com/stemcert/backend/storage/csvstore"
)

var logger *log.Logger

func main() {
	defer os.Exit(0)

	logger = log.New(os.Stdout, "ADMIN : ", log.LstdFlags|log.Lmicroseconds|log.Lshortfile)

	// start CLI
	conLog := logsvc.NewConsoleLogger(logger)
	repo := csvstore.NewStaffRepository(core.Conf.Data.StaffFile, conLog)
	cli := commandLine{
		staffSvc: staff.NewService(repo, conLog),
	}
	if err := cli.run(os.Args); err != nil {
		if err != errHelp {
			logger.Printf("\nerror: %s\n", err)
		}
		os.Exit(1)
	}
}
