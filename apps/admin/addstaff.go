package main

import (
	"github.com/stemcert/backend/core"
	"github.com/stemcert/backend/core/staff"
)

// addStaff creates a staff account after running the same validation the API uses.
func (cli *commandLine) addStaff(uname, fullName, email, role, pwd string) error {
	nu := staff.NewUser{
		Username: core.CleanString(uname, true /* lower */),
		FullName: core.CleanString(fullName),
		Email:    core.CleanString(email, true /* lower */),
		Password: pwd,
		Role:     core.CleanString(role, true /* lower */),
	}
	if err := nu.Validate(cli.staffSvc); err != nil {
		return err
	}
	if _, err := cli.staffSvc.Create(nu); err != nil {
		return err
	}
	return nil
}
