package bot

import (
	"strconv"
	"strings"
)

// ActionKind enumerates every inline-keyboard action the bot understands.
type ActionKind int

const (
	ActionUnknown ActionKind = iota
	ActionApply
	ActionReview
	ActionNew
	ActionBack
	ActionEdit
	ActionSubmit
	ActionCancel
	ActionConfirmCancel
	ActionViewSubmission
	ActionSelect
	ActionView
	ActionApprove
	ActionReject
	ActionViewUsers
	ActionViewApplications
	ActionAddQuestion
	ActionCategoryPersonal
	ActionCategoryPartner
	ActionConfidentialYes
	ActionConfidentialNo
	ActionBackToMenu
)

// Action is a callback payload decoded once at the transport boundary.
// TargetID is set only for the per-submission kinds.
type Action struct {
	Kind     ActionKind
	TargetID uint
}

var actionNames = map[ActionKind]string{
	ActionApply:            "apply_to_questionnaire",
	ActionReview:           "review",
	ActionNew:              "new",
	ActionBack:             "back",
	ActionEdit:             "edit",
	ActionSubmit:           "submit",
	ActionCancel:           "cancel",
	ActionConfirmCancel:    "confirm_cancel",
	ActionViewSubmission:   "view_submission",
	ActionViewUsers:        "view_users",
	ActionViewApplications: "view_applications",
	ActionAddQuestion:      "add_question",
	ActionCategoryPersonal: "category_personal",
	ActionCategoryPartner:  "category_partner",
	ActionConfidentialYes:  "confidential_true",
	ActionConfidentialNo:   "confidential_false",
	ActionBackToMenu:       "back_to_menu",
}

var actionKinds = func() map[string]ActionKind {
	m := make(map[string]ActionKind, len(actionNames))
	for kind, name := range actionNames {
		m[name] = kind
	}
	return m
}()

var targetPrefixes = map[string]ActionKind{
	"select_":  ActionSelect,
	"view_":    ActionView,
	"approve_": ActionApprove,
	"reject_":  ActionReject,
}

// ParseAction decodes a raw callback payload. Unrecognized payloads come
// back as ActionUnknown rather than an error; the wizards re-prompt on them.
func ParseAction(data string) Action {
	if kind, ok := actionKinds[data]; ok {
		return Action{Kind: kind}
	}
	for prefix, kind := range targetPrefixes {
		if strings.HasPrefix(data, prefix) {
			id, err := strconv.ParseUint(strings.TrimPrefix(data, prefix), 10, 64)
			if err != nil {
				return Action{Kind: ActionUnknown}
			}
			return Action{Kind: kind, TargetID: uint(id)}
		}
	}
	return Action{Kind: ActionUnknown}
}

// Data encodes an action back into its wire payload for keyboards.
func (a Action) Data() string {
	if name, ok := actionNames[a.Kind]; ok {
		return name
	}
	for prefix, kind := range targetPrefixes {
		if kind == a.Kind {
			return prefix + strconv.FormatUint(uint64(a.TargetID), 10)
		}
	}
	return ""
}

// Select, View, Approve and Reject build the per-submission actions.
func Select(id uint) Action  { return Action{Kind: ActionSelect, TargetID: id} }
func View(id uint) Action    { return Action{Kind: ActionView, TargetID: id} }
func Approve(id uint) Action { return Action{Kind: ActionApprove, TargetID: id} }
func Reject(id uint) Action  { return Action{Kind: ActionReject, TargetID: id} }
