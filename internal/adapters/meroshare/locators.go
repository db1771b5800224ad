package meroshare

import (
	"os"

	perr "mywallet/internal/platform/errors"

	"gopkg.in/yaml.v3"
)

// Locators lists, per logical element, the CSS selectors tried in order.
// The portal has shipped more than one markup version; earlier entries win
type Locators struct {
	DPDropdown  []string `yaml:"dp_dropdown"`
	DPSearch    []string `yaml:"dp_search"`
	DPOption    []string `yaml:"dp_option"`
	Username    []string `yaml:"username"`
	Password    []string `yaml:"password"`
	LoginSubmit []string `yaml:"login_submit"`

	ErrorToast   []string `yaml:"error_toast"`
	SuccessToast []string `yaml:"success_toast"`

	NoRecords     []string `yaml:"no_records"`
	NoRecordsText []string `yaml:"no_records_text"`

	Cards     []string `yaml:"cards"`
	Rows      []string `yaml:"rows"`
	EntryName []string `yaml:"entry_name"`
	Actions   []string `yaml:"actions"`
	ReportTab []string `yaml:"report_tab"`

	Bank       []string `yaml:"bank"`
	Account    []string `yaml:"account"`
	Kitta      []string `yaml:"kitta"`
	CRN        []string `yaml:"crn"`
	Disclaimer []string `yaml:"disclaimer"`
	PIN        []string `yaml:"pin"`
	FormGroup  []string `yaml:"form_group"`
	Buttons    []string `yaml:"buttons"`

	HoldingsHeader []string `yaml:"holdings_header"`
	HoldingsRows   []string `yaml:"holdings_rows"`

	Labels Labels `yaml:"labels"`
}

// Labels are the visible texts used where the portal exposes no stable id
type Labels struct {
	Apply       []string `yaml:"apply"`
	Edit        []string `yaml:"edit"`
	Report      []string `yaml:"report"`
	ReportTab   string   `yaml:"report_tab"`
	Proceed     string   `yaml:"proceed"`
	Submit      string   `yaml:"submit"`
	RateLimit   string   `yaml:"rate_limit"`
	MinQuantity string   `yaml:"min_quantity"`
}

// DefaultLocators returns the compiled-in strategies
func DefaultLocators() Locators {
	return Locators{
		DPDropdown:  []string{".select2-selection", "span.select2-selection--single", "#selectBranch"},
		DPSearch:    []string{".select2-search__field", "input.select2-search__field"},
		DPOption:    []string{".select2-results__option", "li.select2-results__option"},
		Username:    []string{"#username", "input[name='username']"},
		Password:    []string{"#password", "input[name='password']"},
		LoginSubmit: []string{"button[type='submit']", ".sign-in", "button.btn-primary"},

		ErrorToast:   []string{".toast-error", ".toast-message.toast-error", "#toast-container .toast-error"},
		SuccessToast: []string{".toast-success", "#toast-container .toast-success"},

		NoRecords:     []string{".no-records", ".no-record", "td.no-data", ".empty-state"},
		NoRecordsText: []string{"No Record(s) Found", "No records found", "No data available"},

		Cards:     []string{".company-list"},
		Rows:      []string{".asba-table tbody tr", "table.table tbody tr"},
		EntryName: []string{".company-name", "span[tooltip='Company Name']", ".company-name span"},
		Actions:   []string{"button", "a.btn"},
		ReportTab: []string{".nav-tabs .nav-link", "ul.nav li a", "a.nav-link"},

		Bank:       []string{"#selectBank", "select[name='bank']"},
		Account:    []string{"#accountNumber", "select[name='accountNumber']"},
		Kitta:      []string{"#appliedKitta", "input[name='appliedKitta']"},
		CRN:        []string{"#crnNumber", "input[name='crnNumber']"},
		Disclaimer: []string{"#disclaimer", "input[name='disclaimer']"},
		PIN:        []string{"#transactionPIN", "input[name='transactionPIN']"},
		FormGroup:  []string{".form-group", ".row .col-md-4"},
		Buttons:    []string{"button", "input[type='submit']"},

		HoldingsHeader: []string{"table thead th", "table tr th"},
		HoldingsRows:   []string{"table tbody tr"},

		Labels: Labels{
			Apply:       []string{"Apply"},
			Edit:        []string{"Edit"},
			Report:      []string{"Report", "View"},
			ReportTab:   "Application Report",
			Proceed:     "Proceed",
			Submit:      "Apply",
			RateLimit:   "attempts remaining",
			MinQuantity: "Minimum Quantity",
		},
	}
}

// LoadLocators reads a YAML override file; lists present in the file replace defaults,
// everything else keeps the compiled-in value. Empty path returns defaults
func LoadLocators(path string) (Locators, error) {
	loc := DefaultLocators()
	if path == "" {
		return loc, nil
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		return loc, perr.Wrapf(err, perr.ErrorCodeValidation, "read locators file %s", path)
	}
	if err := yaml.Unmarshal(raw, &loc); err != nil {
		return loc, perr.Wrapf(err, perr.ErrorCodeValidation, "parse locators file %s", path)
	}
	return loc, nil
}
