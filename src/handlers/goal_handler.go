package handlers

import (
	"fmt"
	"net/http"

	"girlmath-server/src/goals"
	"girlmath-server/src/util"
)

func Goals(svc *goals.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		list, err := svc.ListGoals(r.Context(), identity(r).UserID)
		if err != nil {
			p.fail(w, r, err, "/")
			return
		}
		p.render(w, r, "goals.html", "Goals", list)
	}
}

func AddGoal(svc *goals.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goal, err := svc.AddGoal(r.Context(), identity(r).UserID,
			r.PostFormValue("goal_name"), r.PostFormValue("target_amount"))
		if err != nil {
			p.fail(w, r, err, "/goals")
			return
		}
		p.redirect(w, r, "/goals", util.FlashSuccess,
			fmt.Sprintf("Goal '%s' added (target: %s) 💪", goal.Name, util.FormatMoney(goal.Target)))
	}
}

func UpdateGoal(svc *goals.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goalID, err := idParam(r, "id")
		if err != nil {
			p.NotFound(w, r)
			return
		}
		if _, err := svc.UpdateProgress(r.Context(), identity(r).UserID, goalID, r.PostFormValue("saved_amount")); err != nil {
			p.fail(w, r, err, "/goals")
			return
		}
		p.redirect(w, r, "/goals", util.FlashSuccess, "Goal progress updated!")
	}
}

func DeleteGoal(svc *goals.Service, p *Pages) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		goalID, err := idParam(r, "id")
		if err != nil {
			p.NotFound(w, r)
			return
		}
		if err := svc.DeleteGoal(r.Context(), identity(r).UserID, goalID); err != nil {
			p.fail(w, r, err, "/goals")
			return
		}
		p.redirect(w, r, "/goals", util.FlashSuccess, "Goal deleted successfully.")
	}
}
