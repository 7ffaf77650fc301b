package converter

import (
	"lab-booking/internal/delivery/dto"
	"lab-booking/internal/domain/entity"
)

// LabTestToResponse converts a LabTest entity to LabTestResponse DTO
func LabTestToResponse(test *entity.LabTest) *dto.LabTestResponse {
	if test == nil {
		return nil
	}

	faqs := make([]dto.FAQResponse, len(test.FAQs))
	for i, faq := range test.FAQs {
		faqs[i] = dto.FAQResponse{Question: faq.Question, Answer: faq.Answer}
	}

	return &dto.LabTestResponse{
		ID:              test.ID,
		Name:            test.Name,
		Description:     test.Description,
		Category:        test.Category,
		Price:           test.Price,
		Duration:        test.Duration,
		TestType:        string(test.TestType),
		IsActive:        test.IsActive,
		About:           test.About,
		Parameters:      test.Parameters,
		Preparation:     test.Preparation,
		Why:             test.Why,
		Interpretations: test.Interpretations,
		FAQs:            faqs,
		CreatedAt:       test.CreatedAt,
		UpdatedAt:       test.UpdatedAt,
	}
}

// LabTestsToResponses converts a slice of LabTest entities to slice of LabTestResponse DTOs
func LabTestsToResponses(tests []entity.LabTest) []dto.LabTestResponse {
	responses := make([]dto.LabTestResponse, len(tests))
	for i := range tests {
		responses[i] = *LabTestToResponse(&tests[i])
	}
	return responses
}
