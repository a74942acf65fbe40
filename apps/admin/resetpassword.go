package main

func (cli *commandLine) resetPassword(uname, pwd string) error {
	return cli.staffSvc.SetPassword(uname, pwd)
}
