package payroll

import (
	"context"
	"fmt"
	"io"

	"github.com/vasudevyadav/HRMS-Backend-sub000/internal/domain/payroll"
	"github.com/xuri/excelize/v2"
)

var registerHeaders = []string{
	"Employee Code", "Employee Name", "Working Days", "Present Days", "Leave Days", "Absent Days",
	"Holiday Days", "Unpaid Days", "Basic Salary", "Per Day Salary", "Deduction", "Final Salary", "Approved",
}

// ExportSalaries writes the month's salary register as an XLSX workbook.
func (s *PayrollServiceImpl) ExportSalaries(ctx context.Context, month, year int, w io.Writer) error {
	list, err := s.ListSalaries(ctx, month, year)
	if err != nil {
		return err
	}

	f, err := BuildSalaryRegister(list)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write salary register: %w", err)
	}
	return nil
}

// BuildSalaryRegister lays out one row per salary record plus a totals row.
func BuildSalaryRegister(list payroll.ListSalaryResponse) (*excelize.File, error) {
	f := excelize.NewFile()
	sheet := payroll.NewPeriod(list.Month, list.Year).String()
	if err := f.SetSheetName("Sheet1", sheet); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to name sheet: %w", err)
	}

	headers := make([]interface{}, len(registerHeaders))
	for i, h := range registerHeaders {
		headers[i] = h
	}
	if err := setRow(f, sheet, 1, headers); err != nil {
		f.Close()
		return nil, err
	}

	row := 2
	for _, r := range list.Records {
		d := r.Data
		values := []interface{}{
			d.EmployeeCode, d.EmployeeName, d.WorkingDays, d.PresentDays, d.LeaveDays, d.AbsentDays,
			d.WorkingHolidayDays, d.TotalUnpaidDays, d.BasicSalary.InexactFloat64(), d.PerDaySalary.InexactFloat64(),
			d.Deduction.InexactFloat64(), d.FinalSalary.InexactFloat64(), r.IsApproved,
		}
		if err := setRow(f, sheet, row, values); err != nil {
			f.Close()
			return nil, err
		}
		row++
	}

	totals := make([]interface{}, len(registerHeaders))
	totals[1] = "Total"
	totals[8] = list.Summary.TotalBasic.InexactFloat64()
	totals[10] = list.Summary.TotalDeduction.InexactFloat64()
	totals[11] = list.Summary.TotalFinal.InexactFloat64()
	if err := setRow(f, sheet, row, totals); err != nil {
		f.Close()
		return nil, err
	}

	return f, nil
}

// setRow writes values left to right from column A. Nil values leave the cell empty.
func setRow(f *excelize.File, sheet string, row int, values []interface{}) error {
	for col, v := range values {
		if v == nil {
			continue
		}
		cell, err := excelize.CoordinatesToCellName(col+1, row)
		if err != nil {
			return fmt.Errorf("failed to address row %d: %w", row, err)
		}
		if err := f.SetCellValue(sheet, cell, v); err != nil {
			return fmt.Errorf("failed to write cell %s: %w", cell, err)
		}
	}
	return nil
}
