package service

import (
	"context"

	"github.com/kf-pos/dashboard/internal/apperr"
	"github.com/kf-pos/dashboard/internal/enum"
	"github.com/kf-pos/dashboard/internal/model"
)

// FilterSelection is what a staff member picked in the filter bar.
type FilterSelection struct {
	AreaKota string `json:"areaKota"`
	BranchID string `json:"branchId"`
}

// FilterFor turns a selection into the order filter allowed for the role.
// A superadmin narrows by BM area, or by a branch within it; a business
// manager narrows by branch; branch admins get no filter because the backend
// already scopes them to their branch.
func FilterFor(user model.User, sel FilterSelection) (model.Filter, error) {
	switch user.Role {
	case enum.UserRoleSuperAdmin:
		if sel.BranchID != "" {
			return model.Filter{BranchID: sel.BranchID}, nil
		}
		if sel.AreaKota != "" {
			return model.Filter{AreaKota: sel.AreaKota}, nil
		}
		return model.Filter{}, nil
	case enum.UserRoleBusinessManager:
		if sel.AreaKota != "" {
			return model.Filter{}, apperr.InvalidErr("business managers cannot filter by area")
		}
		return model.Filter{BranchID: sel.BranchID}, nil
	case enum.UserRoleBranchAdmin:
		if sel.AreaKota != "" || sel.BranchID != "" {
			return model.Filter{}, apperr.InvalidErr("branch admins cannot change the filter")
		}
		return model.Filter{}, nil
	}
	return model.Filter{}, apperr.InvalidErr("unknown role")
}

// FilterSource lists the options for the filter bar.
// Satisfied by *backend.Client.
type FilterSource interface {
	ListBusinessManagers(ctx context.Context) ([]model.BusinessManager, error)
	ListBranches(ctx context.Context) ([]model.Branch, error)
	ListBranchesByArea(ctx context.Context, area string) ([]model.Branch, error)
}

// FilterOptions are the choices offered to the current user.
type FilterOptions struct {
	BusinessManagers []model.BusinessManager `json:"business_managers"`
	Branches         []model.Branch          `json:"branches"`
}

// LoadFilterOptions fetches the choices for the user's role. For a superadmin,
// branches are only listed once an area is chosen.
func LoadFilterOptions(ctx context.Context, src FilterSource, user model.User, area string) (FilterOptions, error) {
	opts := FilterOptions{BusinessManagers: []model.BusinessManager{}, Branches: []model.Branch{}}
	switch user.Role {
	case enum.UserRoleSuperAdmin:
		bms, err := src.ListBusinessManagers(ctx)
		if err != nil {
			return opts, err
		}
		opts.BusinessManagers = bms
		if area != "" {
			branches, err := src.ListBranchesByArea(ctx, area)
			if err != nil {
				return opts, err
			}
			opts.Branches = branches
		}
	case enum.UserRoleBusinessManager:
		branches, err := src.ListBranches(ctx)
		if err != nil {
			return opts, err
		}
		opts.Branches = branches
	}
	return opts, nil
}
