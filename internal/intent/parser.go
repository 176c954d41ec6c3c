package intent

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

type Kind int

const (
	Unknown Kind = iota
	Balance
	DailyBudget
	SetGoal
	ClearGoal
	Start
	Yes
	No
)

func (k Kind) String() string {
	switch k {
	case Balance:
		return "balance"
	case DailyBudget:
		return "daily_budget"
	case SetGoal:
		return "set_goal"
	case ClearGoal:
		return "clear_goal"
	case Start:
		return "start"
	case Yes:
		return "yes"
	case No:
		return "no"
	default:
		return "unknown"
	}
}

type Intent struct {
	Kind Kind
	// Amount is set for SetGoal, and for a bare amount reply.
	Amount decimal.Decimal
	Text   string
}

var (
	// "Set goal 1000", "Update save goal to 1 000,50 EUR", ...
	setGoalPattern = regexp.MustCompile(`(?i)^(?:set|update)\s+(?:save\s+)?goal\s+(?:to\s+)?(.+)$`)
	clearPattern   = regexp.MustCompile(`(?i)^(?:remove|clear)\s+(?:save\s+)?goal$`)
	balancePattern = regexp.MustCompile(`(?i)^(?:show\s+)?(?:my\s+)?balance\??$`)
	budgetPattern  = regexp.MustCompile(`(?i)^(?:show\s+)?(?:my\s+)?(?:daily\s+budget|today['’]?s\s+budget|today)\??$`)
	startPattern   = regexp.MustCompile(`(?i)^(?:get\s+started|start)$`)
	yesPattern     = regexp.MustCompile(`(?i)^(?:y|yes|yep|yepp|yeah|sure|ok)\b`)
	noPattern      = regexp.MustCompile(`(?i)^(?:n|no|nope|nah)\b`)

	// Money: optional currency around digits with , or space grouping and
	// a . or , decimal part.
	amountPattern = regexp.MustCompile(`^(?:€|eur\s*)?([\d][\d\s,.]*)(?:\s*(?:€|eur|euros?|moneys?))?$`)
)

// Parse recognises a chat message.
func Parse(msg string) Intent {
	text := strings.Join(strings.Fields(msg), " ")
	text = strings.TrimRight(text, ".!")
	in := Intent{Kind: Unknown, Text: text}

	switch {
	case text == "":
		return in
	case setGoalPattern.MatchString(text):
		m := setGoalPattern.FindStringSubmatch(text)
		amount, err := ParseAmount(m[1])
		if err != nil {
			return in
		}
		in.Kind = SetGoal
		in.Amount = amount
	case clearPattern.MatchString(text):
		in.Kind = ClearGoal
	case balancePattern.MatchString(text):
		in.Kind = Balance
	case budgetPattern.MatchString(text):
		in.Kind = DailyBudget
	case startPattern.MatchString(text):
		in.Kind = Start
	case yesPattern.MatchString(text):
		in.Kind = Yes
	case noPattern.MatchString(text):
		in.Kind = No
	default:
		if amount, err := ParseAmount(text); err == nil {
			in.Amount = amount
		}
	}
	return in
}

// ParseAmount reads a positive money amount such as "1000", "1,000.50",
// "1 000,50 €" or "EUR 20".
func ParseAmount(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(strings.ToLower(s))
	m := amountPattern.FindStringSubmatch(s)
	if m == nil {
		return decimal.Zero, fmt.Errorf("not an amount: %q", s)
	}

	num := strings.ReplaceAll(strings.TrimSpace(m[1]), " ", "")
	// The last separator followed by one or two digits is the decimal mark;
	// everything else is grouping.
	if i := strings.LastIndexAny(num, ".,"); i >= 0 && len(num)-i-1 <= 2 && len(num)-i-1 > 0 {
		num = strings.NewReplacer(",", "", ".", "").Replace(num[:i]) + "." + num[i+1:]
	} else {
		num = strings.NewReplacer(",", "", ".", "").Replace(num)
	}

	amount, err := decimal.NewFromString(num)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to parse amount: %w", err)
	}
	if !amount.IsPositive() {
		return decimal.Zero, fmt.Errorf("amount must be positive: %q", s)
	}
	return amount, nil
}
