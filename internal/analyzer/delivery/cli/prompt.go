package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"golang.org/x/term"
)

var errEmptyCompany = errors.New("company name cannot be empty")

// PromptCompany asks for a company name on the terminal. When stdin is not a
// terminal, one line is read from it instead.
func PromptCompany() (string, error) {
	return promptCompany(os.Stdin)
}

func promptCompany(in *os.File) (string, error) {
	if !term.IsTerminal(int(in.Fd())) {
		return readCompany(in)
	}

	var company string
	prompt := &survey.Input{
		Message: "Enter company name:",
		Help:    "A company name such as Apple, Tesla or Microsoft",
	}

	err := survey.AskOne(prompt, &company, survey.WithValidator(func(val interface{}) error {
		str, ok := val.(string)
		if !ok {
			return errEmptyCompany
		}
		_, err := validCompany(str)
		return err
	}))
	if err != nil {
		return "", err
	}
	return validCompany(company)
}

// readCompany reads a single line; a last line without a newline is accepted.
func readCompany(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && (!errors.Is(err, io.EOF) || line == "") {
		return "", fmt.Errorf("failed to read company name: %w", err)
	}
	return validCompany(line)
}

func validCompany(s string) (string, error) {
	company := strings.TrimSpace(s)
	if company == "" {
		return "", errEmptyCompany
	}
	return company, nil
}
