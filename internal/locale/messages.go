package locale

// All user-facing texts, per language.

const (
	Ukrainian = "uk"
	English   = "en"
)

// Message keys.
const (
	Welcome           = "welcome"
	ChangeGroup       = "changegroup"
	NoGroupSelected   = "nogroupselected"
	InfoMessage       = "infomessage"
	ForTomorrow       = "fortomorrow"
	GroupSelected     = "groupselected"
	GroupDoesNotExist = "groupdoesnotexist"
	Warning           = "warning"
	TurningOn         = "turningon"
	NoShutdowns       = "noshutdowns"
	Changed           = "changed"
	FetchError        = "fetcherror"
	ParseError        = "parseerror"
	Language          = "language"
	Error             = "error"
	Unsubscribed      = "unsubscribed"
)

// ── Ukrainian ───────────────────────────────────────────────────────

var uk = map[string]string{
	Welcome:           "Вітаю! Я надсилатиму графік відключень світла для вашої групи.\n\nОберіть номер групи:",
	ChangeGroup:       "Оберіть нову групу:",
	NoGroupSelected:   "Групу не обрано. Скористайтеся /changegroup",
	InfoMessage:       "Графік відключень для групи",
	ForTomorrow:       "на завтра",
	GroupSelected:     "Групу збережено ✅",
	GroupDoesNotExist: "Такої групи не існує",
	Warning:           "⚠️ Через годину світло вимкнуть",
	TurningOn:         "Увімкнуть о",
	NoShutdowns:       "Відключень не заплановано 🎉",
	Changed:           "🔄 Графік для групи оновлено",
	FetchError:        "Сайт обленерго недоступний. Спробуйте пізніше.",
	ParseError:        "Не вдалося розібрати графік. Спробуйте пізніше.",
	Language:          "Мову змінено на українську 🇺🇦",
	Error:             "Щось пішло не так. Спробуйте пізніше.",
	Unsubscribed:      "Ви відписалися від сповіщень. /start щоб повернутися.",
}

// ── English ─────────────────────────────────────────────────────────

var en = map[string]string{
	Welcome:           "Hi! I will send you the power shutdown schedule for your group.\n\nChoose your group number:",
	ChangeGroup:       "Choose a new group:",
	NoGroupSelected:   "No group selected. Use /changegroup",
	InfoMessage:       "Shutdown schedule for group",
	ForTomorrow:       "for tomorrow",
	GroupSelected:     "Group saved ✅",
	GroupDoesNotExist: "This group does not exist",
	Warning:           "⚠️ Power goes off in an hour",
	TurningOn:         "Turning on at",
	NoShutdowns:       "No shutdowns planned 🎉",
	Changed:           "🔄 The schedule for your group has changed",
	FetchError:        "The oblenergo site is unavailable. Try again later.",
	ParseError:        "Could not read the schedule. Try again later.",
	Language:          "Language switched to English 🇬🇧",
	Error:             "Something went wrong. Try again later.",
	Unsubscribed:      "You will no longer get notifications. /start to come back.",
}

var tables = map[string]map[string]string{
	Ukrainian: uk,
	English:   en,
}
