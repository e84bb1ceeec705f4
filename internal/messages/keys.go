package messages

// Template keys used across the bot.
const (
	ColorAccent = "colors.accent"
	ColorError  = "colors.error"

	ChannelFormat = "channels.channelFormat"
	ManageFormat  = "channels.manageFormat"
	ChannelTopic  = "channels.channelTopic"

	TicketTypeTitle   = "ticket.type.title"
	TicketTypeFormat  = "ticket.type.format"
	TicketTitleTitle  = "ticket.title.title"
	TicketEndTitle    = "ticket.end.title"
	TicketEndDesc     = "ticket.end.description"
	TicketNoTypes     = "ticket.noTypes.title"
	TicketNoTypesDesc = "ticket.noTypes.description"

	DataTitle          = "ticket.data.title"
	DataDescription    = "ticket.data.description"
	DataOpenYes        = "ticket.data.openYes"
	DataOpenNo         = "ticket.data.openNo"
	DataStep           = "ticket.data.step"
	DataAssigneesTitle = "ticket.data.assigneesTitle"
	DataAssignee       = "ticket.data.assignee"

	StepErrorTitle = "stepTypes.errorTitle"

	BooleanYes          = "stepTypes.boolean.yes"
	BooleanNo           = "stepTypes.boolean.no"
	BooleanInfo         = "stepTypes.boolean.info"
	BooleanMustBeTrue   = "stepTypes.boolean.mustBeTrueMsg"
	BooleanMustBeFalse  = "stepTypes.boolean.mustBeFalseMsg"
	IntegerFormatError  = "stepTypes.integer.formatErrorMsg"
	IntegerMin          = "stepTypes.integer.minMsg"
	IntegerMax          = "stepTypes.integer.maxMsg"
	DoubleFormatError   = "stepTypes.double.formatErrorMsg"
	DoubleMin           = "stepTypes.double.minMsg"
	DoubleMax           = "stepTypes.double.maxMsg"
	StringLength        = "stepTypes.string.lengthMsg"
	ListEndEmoji        = "stepTypes.list.endEmoji"
	ListDeleteLastEmoji = "stepTypes.list.deleteLastEmoji"
	ListInfo            = "stepTypes.list.info"
	ListItemsFormat     = "stepTypes.list.listItemsFormat"
	ListItemFormat      = "stepTypes.list.listItemFormat"
	ListEmptyFormat     = "stepTypes.list.listEmptyFormat"
	ListLength          = "stepTypes.list.lengthMsg"
	ListEmpty           = "stepTypes.list.emptyListErrorMsg"
	ListDeleteLastEmpty = "stepTypes.list.deleteLastEmptyListErrorMsg"
	SelectOptions       = "stepTypes.selection.optionsMsg"
	SelectOptionFormat  = "stepTypes.selection.optionFormat"
	SelectOneInfo       = "stepTypes.selection.one.info"
	SelectMultiInfo     = "stepTypes.selection.multi.info"
	SelectMultiEnd      = "stepTypes.selection.multi.endEmoji"
	SelectMultiEmpty    = "stepTypes.selection.multi.emptyListErrorMsg"
	SelectMultiLength   = "stepTypes.selection.multi.lengthMsg"

	ManagePermissionError = "manage.permissionError"
	ManageSelectTitle     = "manage.ticket.select.title"
	ManageSelectDesc      = "manage.ticket.select.description"
	ManageSelectError     = "manage.ticket.select.error"
	ManageOpenEmoji       = "manage.ticket.openEmoji"
	ManageCloseEmoji      = "manage.ticket.closeEmoji"
	ManageAssigneesEmoji  = "manage.ticket.assigneesEmoji"
	ManageExitEmoji       = "manage.ticket.exitEmoji"
	ManageAssigneeAdd     = "manage.ticket.assignees.add"
	ManageAssigneeRemove  = "manage.ticket.assignees.remove"
	ManageAssigneeExit    = "manage.ticket.assignees.exit"
	ManageAssignPrompt    = "manage.ticket.assignees.assignUser"
	ManageUnassignPrompt  = "manage.ticket.assignees.unassignUser"
	ManageMentionInvalid  = "manage.ticket.assignees.mentionInvalid"
	ManageTitleOpen       = "manage.ticket.open.titleOpen"
	ManageTitleClose      = "manage.ticket.open.titleClose"
	ManageTitleAssign     = "manage.ticket.assign.titleAssign"
	ManageTitleUnassign   = "manage.ticket.assign.titleUnassign"

	SessionBusy        = "session.busy"
	SessionExpired     = "session.expired.title"
	SessionExpiredDesc = "session.expired.description"
)
