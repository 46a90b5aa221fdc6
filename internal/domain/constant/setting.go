package constant

// Keys used in the settings store. They match the keys of the original
// BreakReminder.txt document.
const (
	SettingFrequency = "Frequency"
	SettingLeadTime  = "LeadTime"
)

const (
	DefaultEventsPerHour   = 1
	DefaultLeadTimeMinutes = 10
)

// FrequencyCycle and LeadTimeCycle are the values the change commands step through.
var (
	FrequencyCycle = []int{1, 2, 3, 4}
	LeadTimeCycle  = []int{0, 5, 10}
)

// AlertSource tells why an alert fired.
type AlertSource string

const (
	AlertSourceSchedule AlertSource = "schedule"
	AlertSourceManual   AlertSource = "manual"
)
