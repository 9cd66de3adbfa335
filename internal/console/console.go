package console

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
	"github.com/shopspring/decimal"

	"github.com/Shvm190/heart-disease-mlops/internal/data"
	"github.com/Shvm190/heart-disease-mlops/internal/schema"
	"github.com/Shvm190/heart-disease-mlops/internal/service"
)

// Console is an interactive shell around a Predictor for local
// inspection of a trained bundle.
type Console struct {
	predictor *service.Predictor

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func New(predictor *service.Predictor) *Console {
	return &Console{
		predictor: predictor,
		green:     color.New(color.FgGreen).SprintFunc(),
		red:       color.New(color.FgRed).SprintFunc(),
		yellow:    color.New(color.FgYellow).SprintFunc(),
		cyan:      color.New(color.FgCyan).SprintFunc(),
	}
}

func (c *Console) Start() {
	c.printWelcome()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(c.yellow("\nheart> "))
		if !scanner.Scan() {
			if scanner.Err() != nil {
				fmt.Printf("\n%s Scanner error: %v\n", c.red("✗"), scanner.Err())
			}
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := strings.ToLower(parts[0])
		args := parts[1:]

		if command == "quit" || command == "exit" || command == "q" {
			fmt.Println(c.cyan("Goodbye!"))
			return
		}
		c.execute(command, args)
	}
}

func (c *Console) execute(command string, args []string) {
	switch command {
	case "help", "h":
		c.showHelp()
	case "load":
		if len(args) > 0 {
			c.loadBundle(args[0])
		} else {
			fmt.Println(c.red("Usage: load <bundle-file>"))
		}
	case "predict":
		c.predict(args)
	case "batch":
		if len(args) > 0 {
			c.batchPredict(args[0])
		} else {
			fmt.Println(c.red("Usage: batch <csv-file>"))
		}
	case "fields":
		c.showFields()
	case "info":
		c.showInfo()
	case "health":
		c.showHealth()
	default:
		fmt.Printf("%s Unknown command: %s (try 'help')\n", c.red("✗"), command)
	}
}

func (c *Console) printWelcome() {
	fmt.Println(c.cyan("Heart Disease Prediction Console"))
	fmt.Println("Type 'help' for available commands, 'quit' to exit.")
}

func (c *Console) showHelp() {
	fmt.Println(c.cyan("Available commands:"))
	fmt.Println("  load <file>          Load a trained model bundle")
	fmt.Println("  predict              Prompt for the 13 input fields and predict")
	fmt.Println("  predict k=v ...      Predict from field=value pairs")
	fmt.Println("  batch <file>         Predict every row of a feature CSV")
	fmt.Println("  fields               Describe the input fields and their ranges")
	fmt.Println("  info                 Show the loaded model and its metrics")
	fmt.Println("  health               Show readiness status")
	fmt.Println("  quit                 Exit")
}

func (c *Console) loadBundle(path string) {
	if err := c.predictor.LoadBundle(path); err != nil {
		fmt.Printf("%s Failed to load bundle: %v\n", c.red("✗"), err)
		return
	}
	health := c.predictor.Health()
	fmt.Printf("%s Loaded model %s from %s\n", c.green("✓"), health.Model.Name, path)
}

func (c *Console) predict(args []string) {
	var rec schema.Record
	var err error
	if len(args) > 0 {
		rec, err = parsePairs(args)
	} else {
		rec, err = c.promptRecord()
	}
	if err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}

	result, err := c.predictor.Predict(rec)
	if err != nil {
		var verr *schema.ValidationError
		if errors.As(err, &verr) {
			fmt.Printf("%s Invalid input:\n", c.red("✗"))
			for _, v := range verr.Violations {
				fmt.Printf("    %s: %s\n", v.Field, v.Reason)
			}
			return
		}
		fmt.Printf("%s Prediction failed: %v\n", c.red("✗"), err)
		return
	}

	fmt.Printf("%s %s\n", c.green("✓"), result.Message)
	fmt.Printf("  Probability: %.4f\n", result.Probability)
	fmt.Printf("  Risk level:  %s\n", colorRisk(result.RiskLevel))
}

func (c *Console) batchPredict(path string) {
	records, err := data.LoadScoringBatch(path)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("✗"), err)
		return
	}

	ok, failed := 0, 0
	for i, rec := range records {
		result, err := c.predictor.Predict(rec)
		if err != nil {
			failed++
			fmt.Printf("  row %d: %s %v\n", i+1, c.red("✗"), err)
			continue
		}
		ok++
		fmt.Printf("  row %d: class=%d probability=%.4f risk=%s\n",
			i+1, result.Prediction, result.Probability, colorRisk(result.RiskLevel))
	}
	fmt.Printf("%s Scored %d rows (%d failed)\n", c.green("✓"), ok, failed)
}

func colorRisk(level string) string {
	switch level {
	case "High":
		return color.RedString(level)
	case "Moderate":
		return color.YellowString(level)
	default:
		return color.GreenString(level)
	}
}

func parsePairs(args []string) (schema.Record, error) {
	rec := make(schema.Record, len(args))
	for _, arg := range args {
		name, value, found := strings.Cut(arg, "=")
		if !found {
			return nil, fmt.Errorf("expected field=value, got %q", arg)
		}
		d, err := decimal.NewFromString(value)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", name, value)
		}
		rec[name] = d
	}
	return rec, nil
}

func (c *Console) promptRecord() (schema.Record, error) {
	reader := bufio.NewReader(os.Stdin)
	rec := make(schema.Record, len(schema.Fields))
	for _, field := range schema.Fields {
		fmt.Printf("  %s (%s): ", c.cyan(field.Name), field.Description)
		line, err := reader.ReadString('\n')
		if err != nil {
			return nil, fmt.Errorf("input aborted: %w", err)
		}
		line = strings.TrimSpace(line)
		if line == "" {
			return nil, fmt.Errorf("no value given for %s", field.Name)
		}
		d, err := decimal.NewFromString(line)
		if err != nil {
			return nil, fmt.Errorf("invalid value for %s: %q", field.Name, line)
		}
		rec[field.Name] = d
	}
	return rec, nil
}

func (c *Console) showFields() {
	fmt.Println(c.cyan("Input fields:"))
	for _, field := range schema.Fields {
		domain := fmt.Sprintf("codes %v", field.Codes)
		if field.Numeric {
			domain = fmt.Sprintf("range [%s, %s]", field.Min, field.Max)
		}
		fmt.Printf("  %-9s %-18s %s\n", field.Name, domain, field.Description)
	}
}

func (c *Console) showInfo() {
	health := c.predictor.Health()
	if !health.Ready() {
		fmt.Printf("%s No bundle loaded\n", c.red("✗"))
		return
	}
	info := health.Model
	fmt.Printf("%s Model: %s\n", c.green("✓"), info.Name)
	fmt.Printf("  Run ID:     %s\n", info.RunID)
	fmt.Printf("  Trained at: %s\n", info.TrainedAt)
	fmt.Printf("  Selection:  %s\n", info.SelectionReason)
	fmt.Printf("  Held-out:   %s\n", info.Metrics.String())
}

func (c *Console) showHealth() {
	health := c.predictor.Health()
	if health.Ready() {
		fmt.Printf("%s Status: %s (model %s)\n", c.green("✓"), health.Status, health.Model.Name)
	} else {
		fmt.Printf("%s Status: %s\n", c.red("✗"), health.Status)
	}
}
