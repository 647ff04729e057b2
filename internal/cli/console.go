package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"lnct-quiz-console/internal/app"
	"lnct-quiz-console/internal/domain"
)

// Console is the interactive text menu. It owns every prompt and re-prompt;
// the service never blocks on input.
type Console struct {
	service  *app.QuizService
	in       io.Reader
	out      io.Writer
	autosave bool

	lines <-chan string
}

func NewConsole(service *app.QuizService, in io.Reader, out io.Writer, autosave bool) *Console {
	return &Console{
		service:  service,
		in:       in,
		out:      out,
		autosave: autosave,
	}
}

// Run drives the main menu until the user exits, input ends or ctx is done.
// State is saved on the way out in every case.
func (c *Console) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	c.lines = readLines(ctx, c.in)

	c.printf("\n Welcome to LNCT Student Management System \n")
	for {
		choice, err := c.prompt(ctx, c.mainMenu())
		if err != nil {
			return c.terminate(err)
		}

		switch choice {
		case "1":
			err = c.register(ctx)
		case "2":
			err = c.login(ctx)
		case "3":
			c.showProfile(ctx)
		case "4":
			err = c.updateProfile(ctx)
		case "5":
			err = c.quizModule(ctx)
		case "6":
			c.logout(ctx)
		case "7":
			return c.terminate(nil)
		default:
			c.printf(" Invalid Choice. Please select a correct option (1-7).\n")
		}
		if err != nil {
			return c.terminate(err)
		}
	}
}

func readLines(ctx context.Context, in io.Reader) <-chan string {
	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(in)
		for scanner.Scan() {
			select {
			case lines <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return lines
}

func (c *Console) prompt(ctx context.Context, label string) (string, error) {
	c.printf("%s", label)
	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case line, ok := <-c.lines:
		if !ok {
			return "", io.EOF
		}
		return strings.TrimSpace(line), nil
	}
}

func (c *Console) printf(format string, args ...any) {
	fmt.Fprintf(c.out, format, args...)
}

func (c *Console) mainMenu() string {
	return fmt.Sprintf(`
--- Main Menu ---
STATUS: %s

Choose option:
1. Registration
2. Login
3. Profile
4. Update profile
5. Quiz Module
6. Logout
7. Exit

select option 1/2/3/4/5/6/7: `, c.status(context.Background()))
}

func (c *Console) status(ctx context.Context) string {
	identity := c.service.CurrentPrincipal(ctx)
	switch identity.Kind {
	case domain.LoggedInAdmin:
		return "ADMIN"
	case domain.LoggedInStudent:
		return identity.Principal.Username
	default:
		return "(Not Logged In)"
	}
}

func (c *Console) register(ctx context.Context) error {
	c.printf("\n--- Student Registration ---\n")
	c.printf("Your unique Registration Number will be: %s\n", c.service.NextRegistrationID())

	var reg domain.Registration
	for {
		username, err := c.prompt(ctx, "1. Enter a unique Username: ")
		if err != nil {
			return err
		}
		if username == "" {
			c.printf("Username cannot be empty.\n")
			continue
		}
		if !c.service.IsUsernameAvailable(username) {
			c.printf("Username already taken or reserved (e.g., admin). Please try another.\n")
			continue
		}
		reg.Username = username
		break
	}

	password, err := c.prompt(ctx, "2. Enter a Password: ")
	if err != nil {
		return err
	}
	if password == "" {
		c.printf("Password cannot be empty. Registration cancelled.\n")
		return nil
	}
	reg.Password = password

	c.printf("\n--- Remaining Profile Details ---\n")
	fields := []struct {
		label  string
		target *string
	}{
		{"3. Full Name: ", &reg.FullName},
		{"4. Date of Birth (DD/MM/YYYY): ", &reg.DateOfBirth},
		{"5. Phone Number (Contact): ", &reg.Phone},
		{"6. Email Address: ", &reg.Email},
		{"7. Program/Course (Branch): ", &reg.Program},
		{"8. Academic Year: ", &reg.AcademicYear},
		{"9. Permanent Address: ", &reg.Address},
		{"10. Guardian/Parent Name: ", &reg.GuardianName},
	}
	for _, f := range fields {
		value, err := c.prompt(ctx, f.label)
		if err != nil {
			return err
		}
		*f.target = value
	}

	principal, err := c.service.Register(ctx, reg)
	if err != nil {
		c.printError(err)
		return nil
	}
	c.printf("\n SUCCESS! %s registered with Reg No: %s\n", principal.FullName, principal.RegistrationID)
	c.checkpoint(ctx)
	return nil
}

func (c *Console) login(ctx context.Context) error {
	if current := c.service.CurrentPrincipal(ctx); current.Kind != domain.LoggedOut {
		c.printf("\n[INFO] Already logged in as %s.\n", c.status(ctx))
		return nil
	}

	c.printf("\n--- Login (User or Admin) ---\n")
	username, err := c.prompt(ctx, "Username: ")
	if err != nil {
		return err
	}
	password, err := c.prompt(ctx, "Password: ")
	if err != nil {
		return err
	}

	identity, err := c.service.Login(ctx, username, password)
	if err != nil {
		c.printError(err)
		return nil
	}
	if identity.Kind == domain.LoggedInAdmin {
		c.printf("\nWelcome Admin. Logged in as Administrator.\n")
		return nil
	}
	c.printf("\nWELCOME. Logged in as %s.\n", identity.Principal.FullName)
	return nil
}

func (c *Console) logout(ctx context.Context) {
	identity, err := c.service.Logout(ctx)
	if errors.Is(err, domain.ErrNotLoggedIn) {
		c.printf("\n[INFO] No user is currently logged in.\n")
		return
	}
	name := "ADMIN"
	if identity.Kind == domain.LoggedInStudent {
		name = identity.Principal.Username
	}
	c.printf("\n Logging out %s. Goodbye!\n", name)
}

func (c *Console) showProfile(ctx context.Context) {
	identity, err := c.service.Profile(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	if identity.Kind == domain.LoggedInAdmin {
		c.printf("\n--- Admin Profile ---\nRole: System Administrator\n")
		return
	}
	p := identity.Principal
	c.printf(`
--- Student Profile ---
Registration No: %s
Name: %s
Username: %s
Program (Branch): %s (%s Year)
-----------------------
1. Date of Birth: %s
2. Phone (Contact): %s
3. Email: %s
4. Address: %s
5. Guardian Name: %s
`, p.RegistrationID, p.FullName, p.Username, p.Program, p.AcademicYear,
		p.DateOfBirth, p.Phone, p.Email, p.Address, p.GuardianName)
}

func (c *Console) updateProfile(ctx context.Context) error {
	identity := c.service.CurrentPrincipal(ctx)
	switch identity.Kind {
	case domain.LoggedOut:
		c.printError(domain.ErrNotLoggedIn)
		return nil
	case domain.LoggedInAdmin:
		c.printError(domain.ErrAdminNotAllowed)
		return nil
	}

	p := identity.Principal
	c.printf("\n--- Update Profile for %s (%s) ---\n", p.FullName, p.RegistrationID)
	c.printf("Which field would you like to update?\n")
	for i, field := range domain.ProfileFields {
		current, _ := p.Value(field)
		c.printf("%d. %s (Current: %s)\n", i+1, field.Label(), current)
	}
	passwordOption := len(domain.ProfileFields) + 1
	c.printf("%d. Password\n0. Cancel\n", passwordOption)

	choice, err := c.prompt(ctx, fmt.Sprintf("Select option (1-%d/0) or field name: ", passwordOption))
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(choice)
	if convErr != nil {
		// fields may also be chosen by name, e.g. "email" or "password"
		if strings.EqualFold(choice, "password") {
			return c.changePassword(ctx)
		}
		field, err := domain.ParseProfileField(choice)
		if err != nil {
			c.printf("Invalid choice.\n")
			return nil
		}
		return c.updateField(ctx, field)
	}
	switch {
	case n < 0 || n > passwordOption:
		c.printf("Invalid choice.\n")
	case n == 0:
		c.printf("Update cancelled.\n")
	case n == passwordOption:
		return c.changePassword(ctx)
	default:
		return c.updateField(ctx, domain.ProfileFields[n-1])
	}
	return nil
}

func (c *Console) updateField(ctx context.Context, field domain.ProfileField) error {
	value, err := c.prompt(ctx, fmt.Sprintf("Enter new %s: ", field.Label()))
	if err != nil {
		return err
	}
	if _, err := c.service.UpdateProfile(ctx, field, value); err != nil {
		c.printError(err)
		return nil
	}
	c.printf(" %s updated.\n", field.Label())
	c.checkpoint(ctx)
	return nil
}

func (c *Console) changePassword(ctx context.Context) error {
	oldPassword, err := c.prompt(ctx, "Enter current Password for verification: ")
	if err != nil {
		return err
	}
	newPassword, err := c.prompt(ctx, "Enter NEW Password: ")
	if err != nil {
		return err
	}
	if err := c.service.ChangePassword(ctx, oldPassword, newPassword); err != nil {
		if errors.Is(err, domain.ErrPasswordMismatch) {
			c.printf(" Verification failed. Current password was incorrect.\n")
			return nil
		}
		c.printError(err)
		return nil
	}
	c.printf(" Password updated.\n")
	c.checkpoint(ctx)
	return nil
}

func (c *Console) quizModule(ctx context.Context) error {
	switch c.service.CurrentPrincipal(ctx).Kind {
	case domain.LoggedOut:
		c.printf("\n ERROR: You must be logged in to access the Quiz Module.\n")
		return nil
	case domain.LoggedInAdmin:
		c.printf("\n ERROR: Admins cannot attempt quizzes.\n")
		return nil
	}

	for {
		choice, err := c.prompt(ctx, `
--- Quiz Module Menu ---
1. Attempt Quiz (Select Category)
2. View Score History
3. Show Profile
4. Update Profile
5. Logout
6. Back to Main Menu
Select option (1-6): `)
		if err != nil {
			return err
		}
		switch choice {
		case "1":
			err = c.selectAndAttempt(ctx)
		case "2":
			c.showScores(ctx)
		case "3":
			c.showProfile(ctx)
		case "4":
			err = c.updateProfile(ctx)
		case "5":
			c.logout(ctx)
			return nil
		case "6":
			c.printf("Returning to Main Menu.\n")
			return nil
		default:
			c.printf(" Invalid choice.\n")
		}
		if err != nil {
			return err
		}
	}
}

func (c *Console) selectAndAttempt(ctx context.Context) error {
	categories, err := c.service.ListCategories(ctx)
	if err != nil {
		c.printError(err)
		return nil
	}
	c.printf("\n--- Select Quiz Category ---\n")
	for i, name := range categories {
		c.printf("%d. %s\n", i+1, name)
	}
	c.printf("%d. Cancel\n", len(categories)+1)

	choice, err := c.prompt(ctx, "Enter category number: ")
	if err != nil {
		return err
	}
	n, convErr := strconv.Atoi(choice)
	switch {
	case convErr != nil:
		c.printf(" Invalid input.\n")
		return nil
	case n == len(categories)+1:
		c.printf("Category selection cancelled.\n")
		return nil
	case n < 1 || n > len(categories):
		c.printf(" Invalid category number.\n")
		return nil
	}
	return c.attempt(ctx, categories[n-1])
}

func (c *Console) attempt(ctx context.Context, category string) error {
	attempt, err := c.service.StartQuiz(ctx, category)
	if err != nil {
		c.printError(err)
		return nil
	}

	c.printf("\n--- Starting %s Quiz (%d Questions) ---\n", attempt.Category(), attempt.Total())
	for {
		q, ok := attempt.Current()
		if !ok {
			break
		}
		c.printf("\nQuestion %d/%d: %s\n", q.Number, q.Total, q.Prompt)
		for _, opt := range q.Options {
			c.printf("  %s. %s\n", opt.Label, opt.Text)
		}

		labels := strings.Join(q.Labels(), "/")
		var outcome app.AnswerOutcome
		for {
			answer, err := c.prompt(ctx, fmt.Sprintf("Your answer (%s): ", labels))
			if err != nil {
				return err
			}
			outcome, err = attempt.Submit(answer)
			if errors.Is(err, domain.ErrInvalidAnswer) {
				c.printf(" Invalid input. Please enter one of %s.\n", labels)
				continue
			}
			if err != nil {
				c.printError(err)
				return nil
			}
			break
		}
		if outcome.Correct {
			c.printf(" Correct!\n")
		} else {
			c.printf(" Incorrect! The correct answer was %s. %s\n", outcome.CorrectLabel, outcome.CorrectText)
		}
	}

	record, err := attempt.Finish(ctx)
	if err != nil {
		c.printError(err)
		return nil
	}
	c.printf("\n--- Quiz Finished! ---\n")
	c.printf("Your final score: %d out of %d\n", record.Marks, record.TotalMarks)
	c.printf("Score recorded in your profile.\n")
	c.checkpoint(ctx)
	return nil
}

func (c *Console) showScores(ctx context.Context) {
	records, err := c.service.ScoreHistory(ctx)
	if err != nil {
		c.printError(err)
		return
	}
	identity := c.service.CurrentPrincipal(ctx)
	c.printf("\n--- Quiz Score History for %s ---\n", identity.Principal.FullName)
	writeScoreTable(c.out, records)
}

func writeScoreTable(out io.Writer, records []domain.ScoreRecord) {
	if len(records) == 0 {
		fmt.Fprintf(out, " No quizzes attempted yet.\n")
		return
	}
	fmt.Fprintf(out, "%-3s | %-10s | %-12s | %-20s\n", "#", "Category", "Score", "Date/Time")
	fmt.Fprintln(out, strings.Repeat("-", 50))
	for i, r := range records {
		score := fmt.Sprintf("%d/%d", r.Marks, r.TotalMarks)
		fmt.Fprintf(out, "%-3d | %-10s | %-12s | %-20s\n", i+1, r.Category, score, r.TakenAt.Format(domain.TimestampLayout))
	}
}

// checkpoint saves after a mutating operation when autosave is on.
func (c *Console) checkpoint(ctx context.Context) {
	if !c.autosave {
		return
	}
	if err := c.service.Save(ctx); err != nil {
		c.printError(err)
	}
}

// terminate performs the best-effort save that ends every run. End of input
// and cancellation are normal exits.
func (c *Console) terminate(cause error) error {
	if err := c.service.Save(context.Background()); err != nil {
		c.printError(err)
	} else {
		c.printf("\n[INFO] Data saved successfully.\n")
	}
	c.printf("\n Thank you for using the LNCT Student System. Exiting...\n")
	if cause == nil || errors.Is(cause, io.EOF) || errors.Is(cause, context.Canceled) {
		return nil
	}
	return cause
}

func (c *Console) printError(err error) {
	c.printf("\n ERROR: %s\n", describe(err))
}

func describe(err error) string {
	var regErr *domain.RegistrationError
	switch {
	case errors.As(err, &regErr):
		return regErr.Error()
	case errors.Is(err, domain.ErrNotLoggedIn):
		return "Please login first."
	case errors.Is(err, domain.ErrAdminNotAllowed):
		return "Admin cannot perform this operation. Please login as a student."
	case errors.Is(err, domain.ErrInvalidCredentials):
		return "Invalid username or password."
	case errors.Is(err, domain.ErrUnknownCategory):
		return "No questions found for that category."
	case errors.Is(err, domain.ErrEmptyCategory):
		return "That category has no questions."
	default:
		return err.Error()
	}
}
