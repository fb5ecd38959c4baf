package annotation

import (
	"github.com/lewtec/cocotool/internal/domain"
	"github.com/russross/blackfriday/v2"
)

// Instructions is the task instructions document sent to workers, with the
// markdown description rendered
type Instructions struct {
	*domain.TaskInstructions
	DescriptionHTML string `json:"description_html"`
}

func RenderInstructions(ins *domain.TaskInstructions) *Instructions {
	if ins == nil {
		return nil
	}
	return &Instructions{
		TaskInstructions: ins,
		DescriptionHTML:  string(blackfriday.Run([]byte(ins.Description))),
	}
}
