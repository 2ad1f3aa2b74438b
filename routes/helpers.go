package routes

import "github.com/stopmotionlab/blog-be/model"

// canModify implements the author-or-admin rule shared by posts and
// discussions. Comment edits are stricter and do not use it.
func canModify(user *model.User, authorId int64) bool {
	return user.IsAdmin || user.Id == authorId
}
